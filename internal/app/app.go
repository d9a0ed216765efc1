package app

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zzzgjj49/xrp-hackathon-project/internal/expiry"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/handlers"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/ledger"
	"github.com/zzzgjj49/xrp-hackathon-project/internal/models"
)

func mustEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func Run() error {
	_ = godotenv.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.InfoLevel)

	db := openDatabase()

	delay := time.Duration(envInt("XRPL_DELAY_MS", 1000)) * time.Millisecond
	xrpl := ledger.NewMock(delay)
	xrpl.Connect()

	r := gin.Default()
	r.Use(cors())

	h := handlers.New(db, xrpl)
	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if db != nil {
		interval := time.Duration(envInt("SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
		go expiry.StartSweeper(db, interval)
	}

	port := mustEnv("APP_PORT", "3001")
	logrus.Infof("listening on :%s", port)
	return r.Run(":" + port)
}

// openDatabase connects to postgres and migrates the schema. A nil
// return puts the whole process into mock-fallback mode for its
// lifetime; there is no retry or reconnect.
func openDatabase() *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		mustEnv("DB_HOST", "localhost"),
		mustEnv("DB_USER", "postgres"),
		mustEnv("DB_PASSWORD", "postgres"),
		mustEnv("DB_NAME", "staking"),
		mustEnv("DB_PORT", "5432"),
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.WithError(err).Warn("database unavailable, serving mock fallbacks")
		return nil
	}
	if err := db.AutoMigrate(&models.User{}, &models.StakeOrder{}, &models.SlashEvent{}, &models.PointsHistory{}); err != nil {
		logrus.WithError(err).Warn("schema migration failed, serving mock fallbacks")
		return nil
	}
	return db
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
