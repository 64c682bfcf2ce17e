package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                = 0
	CodeBadRequest        = 40000
	CodeUnsupportedType   = 40001
	CodeNotFound          = 40400
	CodeInternalServer    = 50000
	CodeTranslationFailed = 50001
	CodeAnswerFailed      = 50002
	CodeIndexUnavailable  = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
