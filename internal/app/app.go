package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "irisai/docs"
	"irisai/internal/config"
	"irisai/internal/handlers"
	"irisai/internal/middleware"
	"irisai/internal/notify"
	"irisai/internal/pdf"
	"irisai/internal/repositories"
	"irisai/internal/repositories/memory"
	"irisai/internal/routes"
	"irisai/internal/services"
)

// Run loads configuration, serves HTTP until ctx is cancelled and then
// drains in-flight requests.
func Run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret (or JWT_SECRET) is required")
	}

	logger, err := NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// === DB ===
	store, closeStore, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("failed to close database", zap.Error(err))
		}
	}()

	notifications := services.NewNotificationService(store, logger, buildNotifiers(cfg, logger)...)
	router := NewRouter(Deps{
		Store:         store,
		Logger:        logger,
		JWTSecret:     []byte(cfg.Auth.JWTSecret),
		Notifications: notifications,
		PDF:           pdf.NewReportGenerator(cfg.Reports.FontPath),
	})

	// === Run ===
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	notifications.Wait()
	logger.Info("server stopped")
	return nil
}

// Deps are the collaborators NewRouter wires into handlers.
type Deps struct {
	Store     repositories.Store
	Logger    *zap.Logger
	JWTSecret []byte
	PDF       pdf.Generator

	// Notifications is built from Notifiers when nil.
	Notifications *services.NotificationService
	Notifiers     []notify.Notifier
}

func NewRouter(d Deps) *gin.Engine {
	notificationService := d.Notifications
	if notificationService == nil {
		notificationService = services.NewNotificationService(d.Store, d.Logger, d.Notifiers...)
	}
	leadService := services.NewLeadService(d.Store, notificationService, d.Logger)
	accountService := services.NewAccountService(d.Store, d.Logger)
	reportService := services.NewReportService(d.Store, d.PDF)

	router := gin.New()
	router.Use(middleware.RequestLogger(d.Logger))
	router.Use(middleware.RecoveryMiddleware(d.Logger))
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return routes.SetupRoutes(
		router,
		d.JWTSecret,
		handlers.NewLeadHandler(leadService, d.Logger),
		handlers.NewAccountHandler(accountService, d.Logger),
		handlers.NewNotificationHandler(notificationService, d.Logger),
		handlers.NewReportHandler(reportService, d.Logger),
		handlers.NewHealthHandler(d.Store),
	)
}

func NewLogger(cfg config.LogConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zc.Level = level
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// openStore connects to PostgreSQL, or falls back to the in-memory store when
// no database URL is configured.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repositories.Store, func() error, error) {
	if cfg.DSN == "" {
		logger.Warn("database url not set, using in-memory store; data is lost on restart")
		return memory.NewStore(), func() error { return nil }, nil
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	logger.Info("connected to PostgreSQL")
	return repositories.NewStore(db), db.Close, nil
}

func buildNotifiers(cfg *config.Config, logger *zap.Logger) []notify.Notifier {
	var out []notify.Notifier
	if cfg.Email.Enabled {
		out = append(out, notify.NewEmailNotifier(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		))
	}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken)
		if err != nil {
			logger.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			out = append(out, tg)
		}
	}
	return out
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
