package util

import "math/rand"

const tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RandToken returns a random lowercase base36 string of length n.
func RandToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = tokenAlphabet[rand.Intn(len(tokenAlphabet))]
	}
	return string(b)
}
