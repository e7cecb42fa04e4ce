package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Msg     string            `json:"msg"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON writes data as the response body.
func JSON(ctx *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, data)
}

// Error writes an error body and returns it.
func Error(ctx *gin.Context, status int, message string, details map[string]string) ErrorBody {
	if status == 0 {
		status = http.StatusBadRequest
	}
	body := ErrorBody{Msg: message, Details: details}
	ctx.JSON(status, body)
	return body
}

// Abort writes an error body and stops the handler chain.
func Abort(ctx *gin.Context, status int, message string, details map[string]string) {
	ctx.AbortWithStatusJSON(status, ErrorBody{Msg: message, Details: details})
}
