package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/container"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/router"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

// Authenticated variant: register/login and per-user measurements.
func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	c, err := container.New(context.Background(), cfg, logger, entity.OwnedByUser)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer c.Close()

	if err := router.Serve(c); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
