package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/usercenter/pkg/errors"
)

// RequestIDKey 请求ID在gin.Context中的key，由日志中间件写入
const RequestIDKey = "request_id"

// GetRequestID 从Context获取请求ID，未经过日志中间件时为空串
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），HTTP状态码由apperrors.HTTPStatus决定
// 2. Message是用户友好的提示信息
// 3. Data是业务数据，成功时返回
// 4. Details是校验失败时的全部违规项
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details []string    `json:"details,omitempty"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功响应，自定义提示信息
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	u, err := createUseCase.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := apperrors.HTTPStatus(appErr)

	// 内部错误只写日志，不返回给客户端
	if appErr.Err != nil || status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("code", appErr.Code),
			zap.Error(appErr),
		)
	}
	_ = c.Error(appErr)

	c.JSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	Data  interface{} `json:"data"`  // 当前页数据
	Total int         `json:"total"` // 过滤后的总记录数
	Page  int         `json:"page"`  // 当前页码
	Limit int         `json:"limit"` // 每页大小
	Pages int         `json:"pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(data interface{}, total, page, limit, pages int) *PageData {
	return &PageData{
		Data:  data,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: pages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, total, page, limit, pages int) {
	Success(c, NewPageData(data, total, page, limit, pages))
}
