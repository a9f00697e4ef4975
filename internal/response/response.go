package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weiwangfds/galleria/internal/errors"
)

// Envelope 统一返回值结构体
// @Description API统一响应格式：成功时data为业务载荷，失败时data为错误消息
type Envelope struct {
	// 是否成功
	Success bool `json:"success" example:"true"`
	// 业务载荷或错误消息
	Data interface{} `json:"data"`
	// 错误码，成功时为0
	Code int `json:"code,omitempty" example:"0"`
	// 请求ID，用于链路追踪
	RequestID string `json:"request_id,omitempty" example:"req_123456789"`
	// 时间戳
	Timestamp int64 `json:"timestamp" example:"1640995200"`
}

// Success 成功响应
// data可以是对象载荷，也可以是一条消息字符串
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:   true,
		Data:      data,
		RequestID: getRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// Fail 失败响应，HTTP状态码固定为200，错误通过envelope表达
// 与管理端的请求/响应约定保持一致
func Fail(c *gin.Context, code errors.ErrorCode, message string) {
	c.JSON(http.StatusOK, Envelope{
		Success:   false,
		Data:      message,
		Code:      int(code),
		RequestID: getRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// FailWithError 失败响应，自动展开应用错误
func FailWithError(c *gin.Context, err error) {
	if appErr, ok := errors.GetAppError(err); ok {
		Fail(c, appErr.Code, appErr.Message)
		return
	}
	Fail(c, errors.ErrInternalServer, errors.GetErrorMessage(errors.ErrInternalServer))
}

// BadRequest 400错误响应
// 用于请求本身不合法（缺少路径参数等），不属于业务失败
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Success:   false,
		Data:      message,
		Code:      int(errors.ErrInvalidParams),
		RequestID: getRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// NotFound 404错误响应
func NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound, Envelope{
		Success:   false,
		Data:      message,
		Code:      int(errors.ErrNotFound),
		RequestID: getRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// InternalServerError 500错误响应
func InternalServerError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, Envelope{
		Success:   false,
		Data:      message,
		Code:      int(errors.ErrInternalServer),
		RequestID: getRequestID(c),
		Timestamp: time.Now().Unix(),
	})
}

// getRequestID 从gin上下文中获取请求ID，用于链路追踪
func getRequestID(c *gin.Context) string {
	if requestID, exists := c.Get("request_id"); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}
