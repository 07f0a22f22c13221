package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/utils/ratelimit"
)

// RateLimitMiddleware 按调用方限流指定接口
// 已认证请求按 user_id 计数，匿名请求按客户端 IP 计数
func RateLimitMiddleware(limiter ratelimit.Limiter, endpoint string, config *ratelimit.RateLimitConfig) gin.HandlerFunc {
	rule := ratelimit.GetRuleForEndpoint(endpoint, config)

	return func(c *gin.Context) {
		key := fmt.Sprintf("%s:user:%s", endpoint, c.GetString("user_id"))
		if c.GetString("user_id") == "" {
			key = fmt.Sprintf("%s:ip:%s", endpoint, c.ClientIP())
		}

		allowed, err := limiter.Allow(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "rate limiter unavailable"})
			c.Abort()
			return
		}
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			c.Abort()
			return
		}

		c.Next()
	}
}
