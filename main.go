package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/ayushmanmishra18/storefront-api/auth"
	"github.com/ayushmanmishra18/storefront-api/cart"
	"github.com/ayushmanmishra18/storefront-api/config"
	orderControllers "github.com/ayushmanmishra18/storefront-api/controllers/order"
	"github.com/ayushmanmishra18/storefront-api/logging"
	"github.com/ayushmanmishra18/storefront-api/middleware"
	"github.com/ayushmanmishra18/storefront-api/models"
	"github.com/ayushmanmishra18/storefront-api/routes"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Storefront REST API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and start the HTTP server (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(_ *cobra.Command, _ []string) error {
				return migrate()
			},
		},
	)
	return root
}

func openDatabase(cfg config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := models.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	logger.Info("database ready")
	return db, nil
}

func migrate() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	db, err := openDatabase(cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	otps, closeOTPs, err := newOTPStore(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer closeOTPs()

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accounts := auth.NewAccounts(db, issuer, otps, newMailer(cfg, logger),
		auth.WithLogger(logger),
		auth.WithOTPTTL(cfg.OTPTTL),
	)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	feed := orderControllers.NewHub(logger)
	defer feed.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 32 << 20
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, routes.Deps{
		DB:       db,
		Accounts: accounts,
		Gate:     auth.NewGate(db, issuer),
		Carts:    cart.New(db),
		Feed:     feed,
		Metrics:  middleware.NewMetrics(reg),
		Logger:   logger,

		MetricsKey: cfg.MetricsAPIKey,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	feed.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newOTPStore uses Redis when REDIS_URL is set and the user table otherwise.
func newOTPStore(ctx context.Context, cfg config.Config, db *gorm.DB, logger *slog.Logger) (auth.OTPStore, func(), error) {
	if cfg.RedisURL == "" {
		return auth.NewDBOTPStore(db), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("otp store: redis", "addr", opts.Addr)
	return auth.NewRedisOTPStore(client), func() { _ = client.Close() }, nil
}

func newMailer(cfg config.Config, logger *slog.Logger) auth.Mailer {
	if !cfg.SMTP.Enabled() {
		logger.Warn("SMTP_HOST not set; OTP codes are written to the log")
		return auth.NewLogMailer(logger)
	}
	return auth.NewSMTPMailer(auth.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
