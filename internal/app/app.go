package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	nats "github.com/nats-io/nats.go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/example/profile-service/config"
	httpadapter "github.com/example/profile-service/internal/adapters/http"
	apiv1 "github.com/example/profile-service/internal/adapters/http/api/v1"
	handlers "github.com/example/profile-service/internal/adapters/http/api/v1/handlers"
	authmw "github.com/example/profile-service/internal/adapters/http/middleware"
	"github.com/example/profile-service/internal/adapters/mailer"
	natsadapter "github.com/example/profile-service/internal/adapters/nats"
	repo "github.com/example/profile-service/internal/adapters/postgres"
	"github.com/example/profile-service/internal/domain"
	"github.com/example/profile-service/internal/usecase"
	pkglog "github.com/example/profile-service/pkg/log"
)

type App struct {
	cfg      *config.Config
	logger   pkglog.Logger
	db       *gorm.DB
	natsConn *nats.Conn
	echo     *echo.Echo
}

func New(ctx context.Context) (*App, error) {
	cfg := config.MustLoad()
	logger := pkglog.New(cfg.AppEnv)

	db, err := gorm.Open(postgres.Open(buildDSN(cfg)), &gorm.Config{
		Logger:         loggerForGorm(cfg),
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, err
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Profile{}, &domain.Transaction{}); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		log.Printf("nats connect failed: %v", err)
	}

	users := repo.NewUserRepository(db)
	profiles := repo.NewProfileRepository(db)
	transactions := repo.NewTransactionRepository(db)

	var mail mailer.Client
	if cfg.MailerBaseURL != "" {
		mail = mailer.NewHTTPClient(cfg.MailerBaseURL, cfg.MailerTimeout)
	}
	var events natsadapter.EventClient
	if nc != nil {
		events = natsadapter.NewEventClient(nc, cfg.NATSUserSubject, cfg.NATSTransactionSubject)
	}

	signer, err := usecase.NewJWTSigner(cfg)
	if err != nil {
		return nil, err
	}

	authSvc := usecase.NewAuthService(cfg, logger, users, mail, events, signer)
	profileSvc := usecase.NewProfileService(logger, users, profiles)
	txSvc := usecase.NewTransactionService(logger, users, transactions, events)

	authHandler := handlers.NewAuthHandler(authSvc)
	profileHandler := handlers.NewProfileHandler(profileSvc)
	txHandler := handlers.NewTransactionHandler(txSvc)
	authMW := authmw.NewAuthMiddleware(signer)
	router := httpadapter.NewRouter(cfg, apiv1.NewRouter(authHandler, profileHandler, txHandler, authMW.Handler))

	if nc != nil {
		verifyHandler := natsadapter.NewVerifyHandler(signer)
		_ = verifyHandler.Subscribe(nc, cfg.NATSVerifySubject, cfg.AppName)
	}

	e := echo.New()
	router.Setup(e)

	return &App{cfg: cfg, logger: logger, db: db, natsConn: nc, echo: e}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.echo.Shutdown(shutdownCtx)
	}()
	go func() {
		errCh <- a.echo.Start(fmt.Sprintf("%s:%s", a.cfg.HTTPHost, a.cfg.HTTPPort))
	}()
	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func buildDSN(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s", cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
}

func loggerForGorm(cfg *config.Config) logger.Interface {
	level := logger.Silent
	switch cfg.AppEnv {
	case "local":
		level = logger.Info
	default:
		level = logger.Warn
	}
	return logger.Default.LogMode(level)
}
