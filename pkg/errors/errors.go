package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型（业务错误码，不是HTTP状态码）
// 2. Message是用户友好的提示信息
// 3. Details列出所有违反的校验规则（校验失败时一次性返回）
// 4. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = msg + ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, msg)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如文件读写错误、网络错误）
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Storage 包装存储层错误（IOError）
// 调用方不重试，直接向上返回
func Storage(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeStorageError,
		Message: message,
		Err:     err,
	}
}

// Redis 包装Redis访问错误（连接失败、命令失败、乐观锁重试用尽）
func Redis(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeRedisError,
		Message: message,
		Err:     err,
	}
}

// MQ 包装消息队列错误
func MQ(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeMQError,
		Message: message,
		Err:     err,
	}
}

// Validation 创建参数校验错误，details为全部违反的规则
func Validation(details ...string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidParams,
		Message: "参数错误",
		Details: details,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（存储异常、外部服务调用失败）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal     = 50000 // 内部错误
	ErrCodeStorageError = 50001 // 存储错误（IOError）
	ErrCodeRedisError   = 50002 // Redis错误
	ErrCodeMQError      = 50003 // 消息队列错误

	// 资源错误（40400-40499）
	ErrCodeNotFound     = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound = 40401 // 用户不存在

	// 业务规则错误（40000-40099）
	ErrCodeEmailDuplicate = 40003 // 邮箱已存在
	ErrCodeDuplicateEntry = 40009 // 重复记录(通用)

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
	ErrCodeExportFormat  = 40902 // 导出格式不支持
)

// =========================================
// 预定义错误
// =========================================

var (
	ErrInternal = New(ErrCodeInternal, "系统内部错误")

	ErrNotFound     = New(ErrCodeNotFound, "资源不存在")
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被使用")

	ErrBindError    = New(ErrCodeBindError, "请求体必须是JSON")
	ErrExportFormat = New(ErrCodeExportFormat, "导出格式必须是csv或json")
)

// =========================================
// 辅助函数
// =========================================

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// HasCode 判断错误链中是否包含指定业务码的AppError
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatus 业务错误码 → HTTP状态码
// 重复邮箱统一返回409，不随调用点变化
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	appErr := GetAppError(err)
	switch {
	case appErr.Code == ErrCodeEmailDuplicate || appErr.Code == ErrCodeDuplicateEntry:
		return http.StatusConflict
	case appErr.Code >= 40400 && appErr.Code < 40500:
		return http.StatusNotFound
	case appErr.Code >= 40000 && appErr.Code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
