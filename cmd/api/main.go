package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinetrack/internal/config"
	"cinetrack/internal/db"
	"cinetrack/internal/email"
	apihttp "cinetrack/internal/http"
	"cinetrack/internal/repository"
	"cinetrack/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	accountRepo := repository.NewPgAccountRepository(pool)
	movieRepo := repository.NewPgMovieRepository(pool)
	libraryRepo := repository.NewPgLibraryRepository(pool)
	quoteRepo := repository.NewPgQuoteRepository(pool)

	tokenSvc, err := service.NewTokenService(cfg.JWTPrivateKey, cfg.JWTTTL())
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}
	hasher := service.NewBcryptHasher(cfg.BcryptCost, cfg.HashConcurrency)
	resetCodes := service.NewResetCodeService(accountRepo, hasher, cfg.ResetCodeTTL())

	var emailSender email.Sender
	switch cfg.EmailDriver {
	case config.EmailDriverLog:
		logger.Warn("EMAIL_DRIVER=log: reset codes are written to the log")
		emailSender = email.NewLogSender(logger)
	default:
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Fatal("smtp sender init", zap.Error(err))
		}
		emailSender = sender
	}

	authLimiter := service.NewMemoryRateLimiter(cfg.AuthRateWindow(), cfg.AuthRateLimit)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory auth limiter", zap.Error(err))
		} else {
			authLimiter = service.NewRedisRateLimiter(redisClient, "auth:rl:", cfg.AuthRateWindow(), cfg.AuthRateLimit)
		}
		cancel()
	}

	accountSvc := service.NewAccountService(logger, accountRepo, libraryRepo, hasher, tokenSvc, resetCodes, emailSender, service.AccountSettings{
		DefaultAvatarURL: cfg.DefaultAvatarURL,
		ResetTokenTTL:    cfg.ResetTokenTTL(),
	})
	movieSvc := service.NewMovieService(logger, movieRepo)
	librarySvc := service.NewLibraryService(logger, accountRepo, movieRepo, libraryRepo, movieSvc)
	quoteSvc := service.NewQuoteService(logger, quoteRepo)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := apihttp.NewRouter(logger, tokenSvc, apihttp.RouterOptions{
		GlobalRateLimit:  cfg.GlobalRateLimit,
		GlobalRateWindow: cfg.GlobalRateWindow(),
		AuthLimiter:      authLimiter,
		Metrics:          apihttp.NewMetrics(),
	},
		apihttp.NewAccountHandler(logger, accountSvc),
		apihttp.NewLibraryHandler(logger, librarySvc),
		apihttp.NewMovieHandler(logger, movieSvc, quoteSvc),
	)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		return server.ListenAndServe()
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping server")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
