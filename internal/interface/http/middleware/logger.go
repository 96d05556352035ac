package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xiebiao/usercenter/pkg/response"
	"github.com/xiebiao/usercenter/pkg/tracing"
)

// RequestIDHeader 请求ID响应头，客户端传入时沿用
const RequestIDHeader = "X-Request-ID"

// SlowRequestThreshold 超过该耗时的请求以warn级别记录
const SlowRequestThreshold = 3 * time.Second

// Logger 请求日志中间件
// 1. 为每个请求生成请求ID，写入响应头和Context（key: request_id）
// 2. 请求结束后记录方法、路径、状态码、耗时、客户端IP
// 3. 5xx记error，4xx和慢请求记warn，其余info
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(response.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("query", c.Request.URL.RawQuery),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields = append(fields,
				zap.String("trace_id", traceID),
				zap.String("span_id", tracing.ExtractSpanID(c.Request.Context())),
			)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		level := zapcore.InfoLevel
		msg := "request"
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case latency > SlowRequestThreshold:
			level = zapcore.WarnLevel
			msg = "slow request"
		case status >= 400:
			level = zapcore.WarnLevel
		}

		if ce := zap.L().Check(level, msg); ce != nil {
			ce.Write(fields...)
		}
	}
}
