package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"noticeboard-http-service/internal/error/code"
)

// Response is the envelope every JSON endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Success writes data with ErrSuccess.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail writes errorCode with its default message and status.
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage writes errorCode with a custom message.
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// ParamError reports a validation failure, keeping the binding message when there is one.
func ParamError(c *gin.Context, message string) {
	if message == "" {
		Fail(c, code.ErrValidation, nil)
		return
	}
	FailWithMessage(c, code.ErrValidation, message, nil)
}

func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound reports a missing record. An empty message uses the generic one.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrRecordNotFound)
	}
	FailWithMessage(c, code.ErrRecordNotFound, message, nil)
}

func Unauthorized(c *gin.Context) {
	Fail(c, code.ErrTokenInvalid, nil)
}

func Forbidden(c *gin.Context) {
	Fail(c, code.ErrForbidden, nil)
}

func TooManyRequests(c *gin.Context) {
	Fail(c, code.ErrTooManyRequests, nil)
}
