package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bmi-service/config"
	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/internal/infrastructure/storage"
	"github.com/oksasatya/bmi-service/pkg/helpers"
)

// Container holds the components shared by one HTTP process. It is built
// once in main and handed to the router.
type Container struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Ownership entity.Ownership

	Store     *storage.Store
	Redis     *redis.Client
	Publisher *helpers.RabbitPublisher
	JWT       *helpers.JWTManager

	// Auth is nil in the public variant.
	Auth *application.AuthService
	BMI  *application.BMIService
}

// New connects storage and the optional Redis and RabbitMQ clients, then
// builds the services for the given variant.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger, own entity.Ownership) (*Container, error) {
	st, err := storage.Open(ctx, cfg, own, logger)
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: logger, Ownership: own, Store: st}

	if rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			// limiter fails open, keep the client
			logger.WithError(err).Warn("redis unreachable; rate limiting is best effort")
		}
		c.Redis = rdb
	} else {
		logger.Info("REDIS_ADDR not set; rate limiting disabled")
	}

	var events application.EventPublisher
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		c.Publisher = pub
		events = pub
	} else {
		logger.Info("RABBITMQ_URL not set; events are not published")
	}

	c.BMI = application.NewBMIService(st.BMI, events, logger)
	if own == entity.OwnedByUser {
		if cfg.UsesDefaultSecret() && cfg.Env != "development" {
			logger.Warn("JWT_SECRET is the development default; set a real secret")
		}
		c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.AccessTTL)
		c.Auth = application.NewAuthService(st.Users, c.JWT, helpers.NewPasswordHasher(bcrypt.DefaultCost), events, logger)
	}
	return c, nil
}

// Close releases everything New opened.
func (c *Container) Close() {
	c.Publisher.Close()
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Store != nil {
		c.Store.Close()
	}
}
