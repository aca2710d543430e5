package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 所有响应共享同一个信封：success 标记业务结果，message 为英文提示，
// 各接口的数据字段平铺在信封顶层。

// OK 成功响应（200）
func OK(c *gin.Context, message string) {
	respond(c, http.StatusOK, true, message, nil)
}

// OKData 成功响应（200，附加数据字段）
func OKData(c *gin.Context, message string, data gin.H) {
	respond(c, http.StatusOK, true, message, data)
}

// Created 创建成功响应（201）
func Created(c *gin.Context, message string) {
	respond(c, http.StatusCreated, true, message, nil)
}

// CreatedData 创建成功响应（201，附加数据字段）
func CreatedData(c *gin.Context, message string, data gin.H) {
	respond(c, http.StatusCreated, true, message, data)
}

// BadRequest 请求参数错误（400）
func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, false, message, nil)
}

// Unauthorized 未认证错误（401）
func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, false, message, nil)
}

// Forbidden 无权限错误（403）
func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, false, message, nil)
}

// NotFound 资源不存在错误（404）
func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, false, message, nil)
}

// Conflict 资源冲突错误（409）
func Conflict(c *gin.Context, message string) {
	respond(c, http.StatusConflict, false, message, nil)
}

// InternalError 服务器内部错误（500）
func InternalError(c *gin.Context, message string) {
	respond(c, http.StatusInternalServerError, false, message, nil)
}

// respond 输出统一信封，data 的字段合并到顶层
func respond(c *gin.Context, status int, success bool, message string, data gin.H) {
	body := gin.H{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}
