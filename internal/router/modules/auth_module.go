package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/bmi-service/internal/interface/http"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
)

// AuthModule serves POST /bmi/register and POST /bmi/login, each with its
// own per-IP limit.
type AuthModule struct {
	Handler        *handlers.AuthHandler
	Redis          *redis.Client
	LoginPerMin    int
	RegisterPerMin int
}

func NewAuthModule(h *handlers.AuthHandler, rdb *redis.Client, loginPerMin, registerPerMin int) *AuthModule {
	return &AuthModule{Handler: h, Redis: rdb, LoginPerMin: loginPerMin, RegisterPerMin: registerPerMin}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := middleware.RateLimit(m.Redis, m.RegisterPerMin, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(m.Redis, m.LoginPerMin, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/bmi/register", registerLimiter, m.Handler.Register)
	rg.POST("/bmi/login", loginLimiter, m.Handler.Login)
}
