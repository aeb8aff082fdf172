package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
	"github.com/sigalit/guide-scheduler-api/pkg/config"
	"github.com/sigalit/guide-scheduler-api/pkg/database"
	"github.com/sigalit/guide-scheduler-api/pkg/handlers"
	"github.com/sigalit/guide-scheduler-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("could not initialize database: %v", err)
	}
	if err := auth.EnsureAdminExists(db, cfg); err != nil {
		logrus.Fatalf("could not bootstrap admin user: %v", err)
	}

	h := handlers.New(db)

	r := gin.Default()
	handlers.RegisterRoutes(r, h)

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("could not run server: %v", err)
	}
}
