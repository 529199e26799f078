package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "jobboard_chat_service/cmd/chat_service/docs" // 引入 Swagger 文档
	"jobboard_chat_service/internal/chat/app"
	"jobboard_chat_service/internal/chat/domain"
	"jobboard_chat_service/internal/chat/handlers"
	"jobboard_chat_service/internal/chat/repository"
	"jobboard_chat_service/internal/chat/router"
	"jobboard_chat_service/pkg/config"
	"jobboard_chat_service/pkg/database"
	errprocess "jobboard_chat_service/pkg/err"
	"jobboard_chat_service/pkg/logger"
	testtool "jobboard_chat_service/pkg/test_tool"
	t_token "jobboard_chat_service/pkg/token"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	defer logger.Log.Sync()
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)
	settings := cfg.Settings.WithDefaults()
	if cfg.JWT.Secret != "" {
		t_token.JWTSecret = []byte(cfg.JWT.Secret)
	}

	testtool.StartPprof()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Mongo (訊息, 對話, read marker)
	uri := database.MongoURI(cfg.MongoSQL.Host, cfg.MongoSQL.Port, cfg.MongoSQL.User, cfg.MongoSQL.Password)
	mongoDB, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.MongoSQL.RetryCount,
			RetryInterval: config.RetryDuration(cfg.MongoSQL.RetryInterval),
		},
		cfg.MongoSQL.Database)
	if err != nil {
		logger.Log.Fatal("Unable to connect to mongoDB database after retries",
			zap.String("host", cfg.MongoSQL.Host),
			zap.Error(err))
	}
	defer mongoDB.Close(context.Background())
	if err := ensureIndexes(ctx, mongoDB.Database); err != nil {
		logger.Log.Fatal("create mongo indexes failed", zap.Error(err))
	}

	// 2. Redis (Pub/Sub, cache)
	redisClient := connectRedis(cfg.Redis)
	defer redisClient.Close()

	// 3. PostgreSQL: 應徵資料 (pgx) 與 operator 查詢 (gorm)
	pgConn := database.Connection{
		ConnectStr: database.PostgresDSN(cfg.PostgreSQL.Host, cfg.PostgreSQL.Port,
			cfg.PostgreSQL.User, cfg.PostgreSQL.Password, cfg.PostgreSQL.Database),
		RetryCount:    cfg.PostgreSQL.RetryCount,
		RetryInterval: config.RetryDuration(cfg.PostgreSQL.RetryInterval),
	}
	pgPool, err := database.NewDatabaseConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("connect postgres failed", zap.Error(err))
	}
	defer pgPool.Close()
	gormDB, err := database.NewPGConnection(pgConn)
	if err != nil {
		logger.Log.Fatal("open gorm failed", zap.Error(err))
	}

	// 4. member service gRPC
	memberConn, err := database.CreateGRPCClient(cfg.MemberService.Name+":"+cfg.MemberService.Port, 10*time.Second)
	if err != nil {
		logger.Log.Fatal("create member GRPC failed", zap.Error(err))
	}
	defer memberConn.Close()

	// 5. Kafka event sink & MinIO transcript store
	kafkaWriter, err := database.NewKafkaWriterWithRetry(database.KafkaConnection{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic,
		RetryCount:    cfg.Kafka.RetryCount,
		RetryInterval: config.RetryDuration(cfg.Kafka.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("create kafka writer failed", zap.Error(err))
	}
	defer kafkaWriter.Close()

	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: config.RetryDuration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal("connect minIO failed", zap.Error(err))
	}

	// 6. 初始化 Repository
	convRepo := repository.NewMongoConversationRepository(mongoDB.Database)
	msgRepo := repository.NewMongoChatMessageRepository(mongoDB.Database)
	markerRepo := repository.NewMongoReadMarkerRepository(mongoDB.Database)
	convCache := repository.NewRedisConversationCache(database.NewRedisRepository[domain.Conversation](redisClient), settings.CacheTTL)
	unreadCache := repository.NewRedisUnreadCache(redisClient, settings.CacheTTL)
	pubsub := repository.NewRedisPubSub(redisClient)
	directory := repository.NewApplicationDirectory(pgPool)
	lookup := repository.NewJobPostLookup(gormDB)
	members := repository.NewMemberDirectory(memberConn)
	events := repository.NewKafkaEventPublisher(kafkaWriter)
	transcripts := repository.NewMinIOTranscriptStore(minioClient, settings.ExportURLExpiry)

	// 7. 初始化 UseCases
	registry := app.NewConversationRegistry(convRepo, convCache, directory)
	unreadUC := app.NewUnreadUseCase(registry, convRepo, msgRepo, markerRepo, unreadCache)
	messageUC := app.NewSendMessageUseCase(registry, msgRepo, markerRepo, unreadUC, pubsub, events)
	broadcastUC := app.NewBroadcastUseCase(directory, registry, messageUC, settings.BroadcastConcurrency)
	historyUC := app.NewHistoryUseCase(registry, messageUC, msgRepo, lookup, members, transcripts)

	hub := app.NewHub()
	if err := hub.Run(ctx, pubsub); err != nil {
		logger.Log.Fatal("subscribe conversation channels failed", zap.Error(err))
	}

	// 8. RabbitMQ 應徵狀態變更
	startStatusConsumer(ctx, cfg.RabbitMQ, registry)

	// 9. 啟動 Fiber
	r := fiber.New(fiber.Config{DisableStartupMessage: config.IsProduction()})
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file, // 将日志输出到文件
	}))

	router.RegisterRoutes(ctx, r, router.Handlers{
		Websocket:     app.NewChatWebsocketHandler(hub, registry, messageUC, unreadUC, settings),
		Conversations: handlers.NewConversationHandler(messageUC, historyUC, unreadUC),
		Broadcast:     handlers.NewBroadcastHandler(broadcastUC),
		Admin:         handlers.NewAdminHandler(historyUC),
	})

	go func() {
		<-ctx.Done()
		logger.Log.Info("shutting down chat service")
		hub.Close()
		if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Log.Error("fiber shutdown failed", zap.Error(err))
		}
	}()

	port := ":" + cfg.Port
	if config.EnvConfig.ChatServicePort != "" {
		port = ":" + config.EnvConfig.ChatServicePort
	}
	logger.Log.Info("Chat Service listening", zap.String("port", port))
	if err := r.Listen(port); err != nil {
		logger.Log.Fatal("Failed to start Fiber", zap.Error(err))
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := repository.EnsureConversationIndexes(ctx, db); err != nil {
		return errprocess.Wrap("conversation indexes", err)
	}
	if err := repository.EnsureMessageIndexes(ctx, db); err != nil {
		return errprocess.Wrap("message indexes", err)
	}
	if err := repository.EnsureReadMarkerIndexes(ctx, db); err != nil {
		return errprocess.Wrap("read marker indexes", err)
	}
	return nil
}

// connectRedis yaml 有 addr 時直連, 否則依 .env 走 sentinel
func connectRedis(c config.RedisConfig) *redis.Client {
	var (
		client *redis.Client
		err    error
	)
	if c.Addr != "" {
		client, err = database.NewRedisStandaloneClient(c.Addr, c.RedisDB)
	} else {
		masterName, sentinel := config.GetRedisSetting()
		client, err = database.NewRedisClient(masterName, sentinel, c.RedisDB)
	}
	if err != nil {
		logger.Log.Fatal("connect redis failed", zap.Error(err))
	}
	return client
}

// startStatusConsumer RabbitMQ 沒設定時不啟動, 對話改由 Resolve 時依應徵狀態判斷
func startStatusConsumer(ctx context.Context, c config.RabbitMQConfig, registry *app.ConversationRegistry) {
	if c.URL == "" {
		logger.Log.Warn("rabbitmq url is empty, status consumer disabled")
		return
	}

	retryInterval := config.RetryDuration(c.RetryInterval)
	conn, err := database.ConnectRabbitMQWithRetry(database.Connection{
		ConnectStr:    c.URL,
		RetryCount:    c.RetryCount,
		RetryInterval: retryInterval,
	})
	if err != nil {
		logger.Log.Fatal("connect rabbitmq failed", zap.Error(err))
	}
	ch, err := database.GetRabbitMQChannelWithRetry(conn, c.RetryCount, retryInterval)
	if err != nil {
		logger.Log.Fatal("open rabbitmq channel failed", zap.Error(err))
	}

	queue := c.StatusQueue
	if queue == "" {
		queue = app.StatusQueue
	}
	if _, err := database.DeclareDurableQueue(ch, queue); err != nil {
		logger.Log.Fatal("declare status queue failed", zap.String("queue", queue), zap.Error(err))
	}

	consumer := app.NewStatusConsumer(ch, registry, queue)
	go func() {
		defer conn.Close()
		defer ch.Close()
		if err := consumer.StartConsumer(ctx); err != nil {
			logger.Log.Error("status consumer failed", zap.String("queue", queue), zap.Error(err))
		}
	}()
}
