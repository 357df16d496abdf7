package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/handler"
	"github.com/iliyamo/travel-booking/internal/logger"
	"github.com/iliyamo/travel-booking/internal/mail"
	"github.com/iliyamo/travel-booking/internal/middleware"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if cfg.DBMigrate {
		n, err := database.Migrate(ctx, db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied", zap.Int("count", n))
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	profiles := repository.NewProfileRepo(db)
	categories := repository.NewCategoryRepo(db)
	payments := repository.NewPaymentMethodRepo(db)
	destinations := repository.NewDestinationRepo(db)
	reservations := repository.NewReservationRepo(db)
	team := repository.NewTeamRepo(db)

	if err := ensureAdmin(ctx, cfg, users, log); err != nil {
		return err
	}

	redisCfg := config.LoadRedisConfig()
	rdb := config.NewRedisClient(redisCfg)
	if rdb == nil {
		log.Warn("redis unavailable; cache and rate limiting disabled", zap.String("addr", redisCfg.Addr))
	} else {
		defer rdb.Close()
	}

	mailer, worker, err := newMailer(cfg.Mail, redisCfg, log)
	if err != nil {
		return err
	}
	if worker != nil {
		if err := worker.Start(); err != nil {
			return fmt.Errorf("start mail worker: %w", err)
		}
		defer worker.Shutdown()
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, log)
	consumer := &queue.Consumer{URL: cfg.AMQPURL, Dir: "logs", Log: log}
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("reservation consumer stopped", zap.Error(err))
		}
	}()

	catalog := service.NewCatalogService(categories, payments, destinations, team)
	booking := service.NewReservationService(db, destinations, payments, reservations, publisher, log)
	resets := service.NewPasswordResetService(users, tokens, mailer, service.PasswordResetConfig{
		Secret:     cfg.JWTSecret,
		TTL:        cfg.PasswordResetTTL,
		BaseURL:    cfg.ResetBaseURL,
		BcryptCost: cfg.BcryptCost,
	}, log)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))

	rl := config.LoadRateLimitConfig()
	mws := router.Middlewares{
		Cache:     middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log),
		RateLimit: middleware.NewTokenBucket(rl, rdb, log),
		AuthLimit: middleware.NewTokenBucket(rl.WithCapacity(rl.AuthCapacity, rl.Prefix+":auth"), rdb, log),
	}
	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens, profiles, log),
		Reset:        handler.NewPasswordResetHandler(resets, log),
		Public:       handler.NewPublicHandler(catalog, log),
		Admin:        handler.NewAdminHandler(catalog, log),
		Reservations: handler.NewReservationHandler(booking, log),
		Profiles:     handler.NewProfileHandler(service.NewProfileService(profiles), log),
		DB:           db,
	}, mws, cfg.JWTSecret)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// ensureAdmin creates the ADMIN account named by ADMIN_EMAIL if it does not
// exist yet.
func ensureAdmin(ctx context.Context, cfg config.Config, users *repository.UserRepo, log *zap.Logger) error {
	if cfg.AdminEmail == "" {
		return nil
	}
	id, err := users.Create(ctx, cfg.AdminEmail, cfg.AdminPassword, model.RoleAdmin, cfg.BcryptCost)
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return nil
	case err != nil:
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account created", zap.Uint64("user_id", id), zap.String("email", cfg.AdminEmail))
	return nil
}

// newMailer builds the configured transport.  The queue transport also
// returns the worker that drains it through SMTP.
func newMailer(cfg config.MailConfig, redisCfg config.RedisConfig, log *zap.Logger) (mail.Mailer, *mail.Worker, error) {
	switch cfg.Transport {
	case "smtp":
		return mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.From), nil, nil
	case "queue":
		opt := asynq.RedisClientOpt{
			Addr:      redisCfg.Addr,
			Password:  redisCfg.Password,
			DB:        redisCfg.DB,
			TLSConfig: redisCfg.TLSConfig(),
		}
		smtp := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.From)
		return mail.NewQueueMailer(asynq.NewClient(opt)), mail.NewWorker(opt, smtp, log), nil
	case "log", "":
		return &mail.LogSender{Log: log}, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
}
