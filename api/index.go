// Package handler is the serverless entrypoint: the same routes as
// cmd/server, wrapped for platforms that invoke a single http.Handler.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sigalit/guide-scheduler-api/pkg/auth"
	"github.com/sigalit/guide-scheduler-api/pkg/config"
	"github.com/sigalit/guide-scheduler-api/pkg/database"
	"github.com/sigalit/guide-scheduler-api/pkg/handlers"
	"github.com/sigalit/guide-scheduler-api/pkg/logger"
	"github.com/sirupsen/logrus"
)

var r *gin.Engine

func init() {
	cfg := config.Load()
	logger.Init(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("could not initialize database: %v", err)
	}
	_ = auth.EnsureAdminExists(db, cfg)

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	handlers.RegisterRoutes(r, handlers.New(db))
}

// Handler is the exported serverless function entrypoint.
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}
