package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bmi-service/internal/application"
	"github.com/oksasatya/bmi-service/internal/interface/middleware"
	"github.com/oksasatya/bmi-service/pkg/response"
)

// writeServiceError maps application errors onto status codes.
func writeServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var fe *application.FieldError
	switch {
	case errors.As(err, &fe):
		response.Error(c, http.StatusBadRequest, fe.Error(), nil)
	case errors.Is(err, application.ErrEmailInUse), errors.Is(err, application.ErrPasswordTooLong):
		response.Error(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "bad email or password", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrBMINotFound):
		response.Error(c, http.StatusNotFound, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).
				WithField("request_id", c.GetString(middleware.CtxRequestIDKey)).
				WithField("path", c.FullPath()).
				Error("request failed")
		}
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
