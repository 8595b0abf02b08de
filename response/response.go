package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the JSON envelope every API handler answers with.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Result(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Code: status, Message: message, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	Result(c, http.StatusOK, "success", data)
}

func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	Result(c, http.StatusOK, message, data)
}

func BadRequest(c *gin.Context, message string) {
	Result(c, http.StatusBadRequest, message, nil)
}

func NotFound(c *gin.Context, message string) {
	Result(c, http.StatusNotFound, message, nil)
}

func Conflict(c *gin.Context, message string) {
	Result(c, http.StatusConflict, message, nil)
}

func Unprocessable(c *gin.Context, message string) {
	Result(c, http.StatusUnprocessableEntity, message, nil)
}

// Error answers with an arbitrary status, used for upstream failures.
func Error(c *gin.Context, status int, message string) {
	Result(c, status, message, nil)
}

func InternalError(c *gin.Context, message string) {
	Result(c, http.StatusInternalServerError, message, nil)
}
