package main

import (
	"context"
	"flag"
	"time"

	"bridge-core/internal/bridge"
	"bridge-core/internal/handler"
	"bridge-core/internal/model"
	"bridge-core/internal/server"
	"bridge-core/internal/service"
	"bridge-core/internal/service/mq"
	"bridge-core/internal/worker"
	"bridge-core/pkg/bls"
	"bridge-core/pkg/cache"
	"bridge-core/pkg/config"
	"bridge-core/pkg/database"
	"bridge-core/pkg/kms"
	"bridge-core/pkg/logger"
	"bridge-core/pkg/rpc"
	"bridge-core/pkg/utils/lock"
	"bridge-core/pkg/validator"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml")
	flag.Parse()

	// 0. 初始化 Config
	config.Init(*configPath)
	cfg := config.Global

	// 1. 初始化 Logger
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()

	// 初始化 Validator
	if err := validator.Init(); err != nil {
		logger.Fatal("初始化 Validator 失败", zap.Error(err))
	}

	// 2. 初始化 BLS 和 lock builder
	if err := bls.Init(); err != nil {
		logger.Fatal("BLS 初始化失败", zap.Error(err))
	}
	builder, err := bridge.NewFromConfig(cfg.Coinset, kms.NewLocalKMS())
	if err != nil {
		logger.Fatal("初始化 lock builder 失败", zap.Error(err))
	}
	logger.Info("Lock builder ready",
		zap.String("chain", builder.Network().ChainID),
		zap.Uint64("message_toll", builder.Network().MessageToll),
		zap.String("portal", builder.Network().PortalLauncherID.Hex()))

	// 3. 连接数据库
	db, err := database.ConnectPostgres(cfg.DB.DSN(), cfg.App.Env == "development")
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	if cfg.App.Env == "development" {
		// 开发环境直接 AutoMigrate, 生产环境走 cmd/migrate
		if err := db.AutoMigrate(model.AllModels()...); err != nil {
			logger.Fatal("AutoMigrate 失败", zap.Error(err))
		}
	}

	// 4. 连接 Redis
	rdb, err := database.ConnectRedis(context.Background(), cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 5. 初始化缓存
	// L1: Memory, L2: Redis
	multiCache := cache.NewMultiLevelCache(
		cache.NewMemoryCache(time.Minute, 5*time.Minute),
		cache.NewRedisCache(rdb),
	)

	// 6. 初始化消息队列
	logger.Info("初始化消息队列...", zap.String("backend", cfg.Redis.MQType))
	producer, err := mq.NewProducer(cfg.Redis.MQType, rdb, cfg.Kafka.Brokers)
	if err != nil {
		logger.Fatal("初始化消息队列失败", zap.Error(err))
	}
	defer producer.Close()

	// 7. 组装 Service
	store := service.NewGormStore(db)
	locker := lock.NewRedisLock(rdb)
	queue := worker.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer queue.Close()

	bridgeService := service.NewBridgeService(
		builder,
		rpc.NewClient(cfg.Coinset.RpcUrl),
		store,
		locker,
		service.WithCache(multiCache),
		service.WithEnqueuer(queue),
	)

	// 8. 启动 Asynq Worker
	workerServer := worker.NewServer(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, 10, bridgeService)
	workerServer.Start()

	// 9. 启动定时任务 (outbox 投递, 失败重试)
	relay := service.NewOutboxRelay(store, producer, 100)
	cronService := service.NewCronService(locker, relay, bridgeService, store, queue)
	if err := cronService.Start(); err != nil {
		logger.Fatal("Cron 启动失败", zap.Error(err))
	}

	// 10. HTTP
	r := server.NewHTTPRouter(handler.NewBundleHandler(bridgeService))
	app := server.New(server.Config{HttpPort: cfg.App.HttpPort}, r)

	// 运行 (阻塞)
	app.Run()

	// 11. 退出后资源清理, 先停后台任务再关连接
	cronService.Stop()
	workerServer.Stop()
	logger.Info("正在关闭数据库连接...")
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	logger.Info("系统已退出")
}
