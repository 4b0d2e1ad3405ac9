package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barriored/config"
	"barriored/internal/handler"
	"barriored/internal/pkg"
	"barriored/internal/repository/rdb"
	"barriored/internal/repository/redis"
	"barriored/internal/router"
	"barriored/internal/service"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger, err := pkg.NewLogger(pkg.LogConfig{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: cfg.Log.Service})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
	logger.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := rdb.Open(ctx, rdb.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		LogLevel:        cfg.Database.LogLevel,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return err
	}
	// 自动建表（开发阶段）
	if cfg.Database.AutoMigrate {
		if err := rdb.AutoMigrate(db); err != nil {
			return err
		}
	}

	rdbClient, err := redis.Init(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
		Retries:  5,
	})
	if err != nil {
		return err
	}
	defer func() { _ = rdbClient.Close() }()

	// repository
	users := &rdb.UserRepository{DB: db}
	communities := &rdb.CommunityRepository{DB: db}
	categories := &rdb.CategoryRepository{DB: db}
	businesses := &rdb.BusinessRepository{DB: db}
	posts := &rdb.PostRepository{DB: db}
	alerts := &rdb.AlertRepository{DB: db}
	publicServices := &rdb.PublicServiceRepository{DB: db}
	outbox := &rdb.OutboxRepository{DB: db, MaxRetry: cfg.Outbox.MaxRetry}

	// service
	tokens := pkg.NewTokenIssuer(pkg.JWTConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	userSvc := service.NewUserService(users,
		&redis.SessionRepository{Client: rdbClient},
		&redis.LinkTokenRepository{Client: rdbClient},
		communities, tokens,
		service.UserConfig{
			PublicBaseURL:     cfg.Auth.PublicBaseURL,
			MagicLinkTTL:      cfg.Auth.MagicLinkTTL,
			PlaceholderDomain: cfg.OTP.PlaceholderDomain,
		})
	otpSvc := service.NewOTPService(otpProvider(cfg, logger), &redis.OTPRepository{Client: rdbClient}, userSvc,
		service.OTPConfig{Cooldown: cfg.OTP.Cooldown, RequestTTL: cfg.OTP.RequestTTL}, logger)
	communitySvc := service.NewCommunityService(communities, categories,
		&redis.TenantCache{Client: rdbClient, TTL: 10 * time.Minute}, logger)

	storage, uploadDir, err := objectStorage(cfg)
	if err != nil {
		return err
	}

	h := router.Handlers{
		User:      handler.NewUserHandler(userSvc),
		OTP:       handler.NewOTPHandler(otpSvc),
		Community: handler.NewCommunityHandler(communitySvc),
		Business:  handler.NewBusinessHandler(service.NewBusinessService(businesses, categories)),
		Post:      handler.NewPostHandler(service.NewPostService(posts)),
		Alert: handler.NewAlertHandler(service.NewAlertService(alerts),
			service.NewPublicServiceService(publicServices)),
		Upload: handler.NewUploadHandler(service.NewUploadService(storage, cfg.Storage.MaxSize)),
	}
	r := router.InitRouter(h, userSvc, communitySvc, router.Options{
		Mode:           cfg.Server.Mode,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		UploadDir:      uploadDir,
	}, logger)

	// outbox 投递链：日志 -> kafka -> 邮件
	senders := []service.Sender{service.LogSender(logger)}
	if cfg.Kafka.Enabled {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer func() { _ = producer.Close() }()
		senders = append(senders, service.KafkaSender(producer))
	}
	if cfg.SMTP.Enabled {
		mailer := pkg.NewMailer(pkg.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		senders = append(senders, service.NewNotifier(users, mailer, cfg.OTP.PlaceholderDomain, logger).Sender())
	}
	relayer := service.NewOutboxRelayer(outbox, service.ChainSenders(senders...),
		cfg.Outbox.BatchSize, cfg.Outbox.Interval, logger)
	expiry := service.NewAlertExpiryJob(communities, alerts, cfg.Alerts.ExpiryCron, logger).
		WithLocker(&redis.DistLock{Client: rdbClient})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return relayer.Run(gctx) })
	g.Go(func() error { return expiry.Run(gctx) })
	return g.Wait()
}

func otpProvider(cfg *config.Config, logger *zap.Logger) service.OTPProvider {
	if cfg.OTP.Provider == "local" {
		logger.Warn("using local otp provider, codes are only logged")
		return service.NewLocalOTPProvider(cfg.OTP.RequestTTL, logger)
	}
	return pkg.NewOTPDevClient(pkg.OTPDevConfig{
		BaseURL: cfg.OTP.BaseURL,
		APIKey:  cfg.OTP.APIKey,
		Timeout: cfg.OTP.Timeout,
	}, logger)
}

// objectStorage 本地存储时同时返回静态目录
func objectStorage(cfg *config.Config) (pkg.ObjectStorage, string, error) {
	if cfg.Storage.Driver == "s3" {
		s, err := pkg.NewS3Storage(pkg.S3Config{
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		return s, "", err
	}
	local, err := pkg.NewLocalStorage(cfg.Storage.LocalDir, cfg.Storage.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return local, local.Dir(), nil
}
