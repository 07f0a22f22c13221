package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/potluckhq/potluck/config"
	"github.com/potluckhq/potluck/internal/consumer"
	"github.com/potluckhq/potluck/internal/handler"
	"github.com/potluckhq/potluck/internal/middlewares"
	"github.com/potluckhq/potluck/internal/pkg/kafka"
	redispkg "github.com/potluckhq/potluck/internal/pkg/redis"
	"github.com/potluckhq/potluck/internal/repository"
	"github.com/potluckhq/potluck/internal/routers"
	"github.com/potluckhq/potluck/internal/service"
	"github.com/potluckhq/potluck/internal/storage"
	"github.com/potluckhq/potluck/internal/utils"
	"github.com/potluckhq/potluck/internal/ws"
	"github.com/potluckhq/potluck/middleware/jwt"
	logger "github.com/potluckhq/potluck/middleware/log"
	"github.com/potluckhq/potluck/utils/ratelimit"
)

func main() {
	cfg, err := config.LoadConfig("./config.toml")
	if err != nil {
		log.Fatalf("配置初始化失败: %v", err)
	}

	appLog, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer appLog.Close()

	// 初始化全局 Worker Pool (协程池)
	// 用于异步处理请求，防止高并发下 Goroutine 暴涨
	utils.InitGlobalWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)

	// 初始化 PostgreSQL
	dsn := storage.BuildDSN(cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.DBName)
	postgres, err := storage.InitPostgres(dsn, cfg.Postgres.MaxIdleConns, cfg.Postgres.MaxOpenConns)
	if err != nil {
		log.Fatalf("postgres 初始化失败: %v", err)
	}

	// 初始化 Redis
	redisClient, err := storage.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns)
	if err != nil {
		log.Fatalf("redis 初始化失败: %v", err)
	}
	rdb := redispkg.NewClient(redisClient)
	defer rdb.Close()

	// 初始化仓储层
	store := repository.NewStore(postgres)

	tokenManager := jwt.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireHours, cfg.JWT.RefreshHours)

	// 限流器 (邀请码兑换、注册、登录)
	limiter := ratelimit.NewTokenBucketLimiter(redisClient, appLog.Logger, cfg.RateLimit.FailOpen)
	limits := &ratelimit.RateLimitConfig{
		RegisterPerMinute: cfg.RateLimit.RegisterPerMinute,
		LoginPerMinute:    cfg.RateLimit.LoginPerMinute,
		RedeemPerMinute:   cfg.RateLimit.RedeemPerMinute,
		APIPerMinute:      cfg.RateLimit.APIPerMinute,
	}

	// 初始化 Kafka Producer
	var notifier service.Notifier
	kafkaProducer, err := kafka.NewProducer(&cfg.Kafka)
	if err != nil {
		log.Printf("Kafka 生产者初始化失败: %v。系统将以降级模式运行（跳过入场通知）。", err)
	} else {
		defer kafkaProducer.Close()
		notifier = kafka.NewJoinNotifier(kafkaProducer, cfg.Kafka.Topic)
	}

	// 初始化 WebSocket Hub 与跨节点广播
	hub := ws.NewHub(rdb)
	go hub.Run()
	go func() {
		if err := hub.RunFanout(context.Background()); err != nil {
			appLog.Error("feed 广播退出: " + err.Error())
		}
	}()

	// 初始化 Kafka Consumer (如果 Kafka 可用)
	if kafkaProducer != nil {
		notifConsumer := consumer.NewNotificationConsumer(store)
		consumer.StartConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, notifConsumer)
	}

	// 初始化服务层
	authService := service.NewAuthService(store.Users(), tokenManager)
	partyService := service.NewPartyService(store)
	admissionService := service.NewAdmissionService(store, notifier, hub, appLog)
	ledgerService := service.NewLedgerService(store, hub, appLog)
	categoryService := service.NewCategoryService(store)
	dishService := service.NewDishService(store)

	// 初始化处理器
	authHandler := handler.NewAuthHandler(authService)
	partyHandler := handler.NewPartyHandler(partyService, hub)
	admissionHandler := handler.NewAdmissionHandler(admissionService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	categoryHandler := handler.NewCategoryHandler(categoryService, dishService)
	notificationHandler := handler.NewNotificationHandler(store.Notifications())

	// 配置并创建 Gin 引擎
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestLogMiddleware(appLog))

	routers.SetupRoutes(r,
		tokenManager,
		limiter,
		limits,
		authHandler,
		partyHandler,
		admissionHandler,
		ledgerHandler,
		categoryHandler,
		notificationHandler,
	)

	// 启动服务器，收到 SIGINT/SIGTERM 后优雅退出
	srv := &http.Server{
		Addr:    ":" + strconv.FormatInt(int64(cfg.Server.Port), 10),
		Handler: r,
	}

	go func() {
		log.Printf("正在启动服务器，监听端口 :%d\n", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务器失败: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器关闭失败: %v", err)
	}
}
