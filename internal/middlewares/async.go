package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/utils"
)

// AsyncMiddleware 异步处理中间件
// 将请求的处理逻辑提交到 Worker Pool 执行，严格控制并发处理的请求数量。
// 队列满时请求排队等待而不是被拒绝。
func AsyncMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 没有初始化 Worker Pool 时降级为同步执行
		if utils.GlobalWorkerPool == nil {
			c.Next()
			return
		}

		done := make(chan struct{})

		// 主 Goroutine 阻塞等待 (<-done)，同一时间只有一个
		// Goroutine 在操作 gin.Context，因此闭包捕获是安全的
		task := func() {
			defer close(done)
			c.Next()
		}

		utils.GlobalWorkerPool.Submit(task)

		<-done
	}
}
