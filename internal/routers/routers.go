package routers

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/internal/handler"
	"github.com/potluckhq/potluck/internal/middlewares"
	"github.com/potluckhq/potluck/middleware/jwt"
	"github.com/potluckhq/potluck/utils/ratelimit"
)

// SetupRoutes 设置所有路由
func SetupRoutes(r *gin.Engine,
	tokenManager *jwt.TokenManager,
	limiter ratelimit.Limiter,
	limits *ratelimit.RateLimitConfig,
	authHandler *handler.AuthHandler,
	partyHandler *handler.PartyHandler,
	admissionHandler *handler.AdmissionHandler,
	ledgerHandler *handler.LedgerHandler,
	categoryHandler *handler.CategoryHandler,
	notificationHandler *handler.NotificationHandler,
) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Trace-ID"}
	r.Use(cors.New(corsConfig))

	// WebSocket 路由 (在重量级中间件之前注册，避免握手被拦截)
	r.GET("/ws/parties/:party_id/feed", middlewares.AuthMiddleware(tokenManager), partyHandler.ServeFeed)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Status": "OK",
		})
	})

	// 异步处理中间件，将请求放入 Worker Pool 排队执行
	r.Use(middlewares.AsyncMiddleware())

	RegisterAuthRoutes(r, tokenManager, limiter, limits, authHandler)
	RegisterPartyRoutes(r, tokenManager, partyHandler, ledgerHandler, admissionHandler)
	RegisterAdmissionRoutes(r, tokenManager, limiter, limits, admissionHandler)
	RegisterCatalogRoutes(r, tokenManager, categoryHandler)
	RegisterNotificationRoutes(r, tokenManager, notificationHandler)
}

func RegisterAuthRoutes(r *gin.Engine, tm *jwt.TokenManager, limiter ratelimit.Limiter, limits *ratelimit.RateLimitConfig, authHandler *handler.AuthHandler) {
	userGroup := r.Group("/api/v1/users")
	{
		userGroup.POST("/register", middlewares.RateLimitMiddleware(limiter, "register", limits), authHandler.Register) // 注册
		userGroup.POST("/login", middlewares.RateLimitMiddleware(limiter, "login", limits), authHandler.Login)          // 登录
	}
	userGroup.Use(middlewares.AuthMiddleware(tm))
	{
		userGroup.GET("/me", authHandler.Me) // 获取当前用户信息
	}
}

func RegisterPartyRoutes(r *gin.Engine, tm *jwt.TokenManager,
	partyHandler *handler.PartyHandler,
	ledgerHandler *handler.LedgerHandler,
	admissionHandler *handler.AdmissionHandler,
) {
	partyGroup := r.Group("/api/v1/parties")
	partyGroup.Use(middlewares.AuthMiddleware(tm))
	{
		partyGroup.POST("", partyHandler.CreateParty)
		partyGroup.GET("", partyHandler.ListParties)        // 公开聚会列表
		partyGroup.GET("/mine", partyHandler.ListMyParties) // 我主办的聚会
		partyGroup.GET("/:party_id", partyHandler.GetParty)
		partyGroup.GET("/:party_id/participants", partyHandler.ListParticipants)
		partyGroup.POST("/:party_id/close", partyHandler.CloseParty)
		partyGroup.POST("/:party_id/reopen", partyHandler.ReopenParty)
		partyGroup.PATCH("/:party_id/privacy", partyHandler.SetPrivacy)
		partyGroup.DELETE("/:party_id/participants/:participant_id", partyHandler.RemoveParticipant)

		// 菜单管理 (仅主办人)
		partyGroup.POST("/:party_id/dishes", partyHandler.AddDish)
		partyGroup.PATCH("/:party_id/dishes/:dish_id", partyHandler.UpdateDishAmount)
		partyGroup.DELETE("/:party_id/dishes/:dish_id", partyHandler.RemoveDish)

		// 认领台账
		partyGroup.PUT("/:party_id/dishes/:dish_id/contribution", ledgerHandler.PutContribution)
		partyGroup.GET("/:party_id/dishes/:dish_id/status", ledgerHandler.DishStatus)
		partyGroup.DELETE("/:party_id/contributions/:contribution_id", ledgerHandler.DeleteContribution)

		// 邀请码 (仅主办人)
		partyGroup.POST("/:party_id/invitations", admissionHandler.CreateInvitation)
		partyGroup.GET("/:party_id/invitations", admissionHandler.ListInvitations)
	}
}

func RegisterAdmissionRoutes(r *gin.Engine, tm *jwt.TokenManager, limiter ratelimit.Limiter, limits *ratelimit.RateLimitConfig, admissionHandler *handler.AdmissionHandler) {
	joinGroup := r.Group("/api/v1/join")
	joinGroup.Use(middlewares.AuthMiddleware(tm))
	{
		// 限流防止邀请码被爆破
		joinGroup.POST("", middlewares.RateLimitMiddleware(limiter, "redeem", limits), admissionHandler.Redeem)
	}
}

func RegisterCatalogRoutes(r *gin.Engine, tm *jwt.TokenManager, categoryHandler *handler.CategoryHandler) {
	catalogGroup := r.Group("/api/v1")
	catalogGroup.Use(middlewares.AuthMiddleware(tm))
	{
		catalogGroup.POST("/categories", categoryHandler.CreateCategory)
		catalogGroup.GET("/categories", categoryHandler.ListCategories)
		catalogGroup.PATCH("/categories/:category_id/parent", categoryHandler.ReparentCategory)
		catalogGroup.DELETE("/categories/:category_id", categoryHandler.DeleteCategory)

		catalogGroup.POST("/dishes", categoryHandler.CreateDish)
		catalogGroup.GET("/dishes", categoryHandler.ListDishes)
	}
}

func RegisterNotificationRoutes(r *gin.Engine, tm *jwt.TokenManager, notificationHandler *handler.NotificationHandler) {
	notifGroup := r.Group("/api/v1/notifications")
	notifGroup.Use(middlewares.AuthMiddleware(tm))
	{
		notifGroup.GET("", notificationHandler.ListNotifications)
		notifGroup.POST("/:notification_id/read", notificationHandler.MarkNotificationRead)
	}
}
