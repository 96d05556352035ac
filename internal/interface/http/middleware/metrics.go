package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/usercenter/pkg/metrics"
)

// Metrics HTTP指标中间件
// path使用路由模板（/api/users/:id），避免每个ID一条时间序列
func Metrics() gin.HandlerFunc {
	metrics.InitMetrics()

	return func(c *gin.Context) {
		metrics.HTTPRequestsInProgress.Inc()
		defer metrics.HTTPRequestsInProgress.Dec()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
