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

// Public variant: measurements tagged with a display name, no accounts.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)

	c, err := container.New(context.Background(), cfg, logger, entity.OwnedByName)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer c.Close()

	if err := router.Serve(c); err != nil {
		logger.WithError(err).Error("server stopped")
	}
}
