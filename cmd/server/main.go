package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"contactbook/internal/auth/hash"
	"contactbook/internal/auth/token"
	"contactbook/internal/config"
	"contactbook/internal/domain/dto"
	lg "contactbook/internal/log"
	"contactbook/internal/mailer"
	"contactbook/internal/migrate"
	myPostgres "contactbook/internal/repo/postgres"
	myRedis "contactbook/internal/repo/redis"
	"contactbook/internal/service"
	"contactbook/internal/storage"
	myHTTP "contactbook/internal/transport/http"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	redisCli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisCli.Close()

	rootCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	avatars, err := storage.NewS3Store(rootCtx, cfg)
	if err != nil {
		zapLog.Fatal("failed to init avatar storage", zap.Error(err))
	}

	validate := dto.NewValidator()
	hasher := hash.New(cfg.PasswordPepper)
	codec := token.NewCodec([]byte(cfg.JWTSecret))
	mail := mailer.New(cfg)

	userRepo := myPostgres.NewUserRepo(db)
	contactRepo := myPostgres.NewContactRepo(db)
	sessionCache := myRedis.NewSessionCache(redisCli, cfg.SessionCacheTTL, zapLog)

	authSvc := service.NewAuth(userRepo, sessionCache, codec, hasher, mail, cfg, validate, zapLog)
	userSvc := service.NewUsers(userRepo, hasher, avatars, validate)
	contactSvc := service.NewContacts(contactRepo, validate)

	handler := myHTTP.NewHandler(authSvc, userSvc, contactSvc, zapLog)
	router := myHTTP.NewRouter(cfg, zapLog, handler)

	srv := &http.Server{Addr: cfg.HTTPAddress, Handler: router}
	g, _ := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		zapLog.Info("http server listening", zap.String("addr", cfg.HTTPAddress))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLog.Error("shutdown error", zap.Error(err))
	}
	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
