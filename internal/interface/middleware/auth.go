package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/domain/entity"
	"github.com/oksasatya/bmi-service/pkg/response"
)

const CtxUserIDKey = "userID"

// CallerResolver is satisfied by application.AuthService.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*entity.User, error)
}

// Auth validates the bearer token and resolves the calling account.
// It sets userID in the Gin context on success.
func Auth(resolver CallerResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		u, err := resolver.ResolveCaller(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, application.ErrUnauthorized) {
				response.Abort(c, http.StatusUnauthorized, "invalid access token", nil)
				return
			}
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString(CtxRequestIDKey)).Error("resolve caller failed")
			}
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}

		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUserID returns the id stored by Auth.
func CurrentUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
