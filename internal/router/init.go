package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bmi-service/internal/container"
	handlers "github.com/oksasatya/bmi-service/internal/interface/http"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
	"github.com/oksasatya/bmi-service/internal/router/modules"
	"github.com/oksasatya/bmi-service/pkg/validation"
)

// InitModules registers the route modules of the container's variant.
func InitModules(r *Registry, c *container.Container) {
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(c.Store, c.Logger)))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(c.Redis))
	}

	bmiHandler := handlers.NewBMIHandler(c.BMI, c.Logger)
	if c.Auth == nil {
		r.Add(modules.NewBMIModule(bmiHandler, nil, c.Redis, c.Config.BMICreateRatePerMin))
		return
	}
	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(c.Auth, c.Logger),
		c.Redis,
		c.Config.LoginRatePerMin,
		c.Config.RegisterRatePerMin,
	))
	r.Add(modules.NewBMIModule(bmiHandler, middleware.Auth(c.Auth, c.Logger), c.Redis, c.Config.BMICreateRatePerMin))
}

// NewEngine builds the Gin engine with global middleware and all modules.
func NewEngine(c *container.Container) *gin.Engine {
	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	if origins := c.Config.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
			MaxAge:        12 * time.Hour,
		}))
	}
	if c.Config.HTTPLogEnabled || c.Config.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := NewRegistry(r, "")
	reg.Use(middleware.RealIP())
	InitModules(reg, c)
	reg.RegisterAll()
	return r
}
