package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/bmi-service/internal/interface/http"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
)

// BMIModule serves the measurement routes. With a nil Auth the routes are
// open and /user/bmi is not registered. Creates are limited per account,
// or per IP when there is no account.
type BMIModule struct {
	Handler      *handlers.BMIHandler
	Auth         gin.HandlerFunc
	Redis        *redis.Client
	CreatePerMin int
}

func NewBMIModule(h *handlers.BMIHandler, auth gin.HandlerFunc, rdb *redis.Client, createPerMin int) *BMIModule {
	return &BMIModule{Handler: h, Auth: auth, Redis: rdb, CreatePerMin: createPerMin}
}

func (m *BMIModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/")
	if m.Auth != nil {
		g.Use(m.Auth)
	}
	createLimiter := middleware.RateLimit(m.Redis, m.CreatePerMin, time.Minute, middleware.KeyByUserID(), nil)

	g.POST("/bmi", createLimiter, m.Handler.Create)
	g.GET("/bmi", m.Handler.List)
	g.GET("/bmi/:id", m.Handler.Get)
	if m.Auth != nil {
		g.GET("/user/bmi", m.Handler.Mine)
	}
}
