package main

import (
	"log"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
