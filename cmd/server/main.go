// Inkwell is a blog platform with email-activated accounts, JWT sessions
// and a role-gated admin console.
//
// @title        Inkwell API
// @version      1.0
// @description  Blog platform API: registration, activation, login with
// @description  two-factor confirmation, token refresh, posts and user
// @description  administration.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/inkwellhq/inkwell/docs"
	"github.com/inkwellhq/inkwell/internal/api"
	"github.com/inkwellhq/inkwell/internal/core/ports"
	"github.com/inkwellhq/inkwell/internal/core/token"
	"github.com/inkwellhq/inkwell/internal/infrastructure/config"
	mongodb "github.com/inkwellhq/inkwell/internal/infrastructure/db/mongo"
	redisdb "github.com/inkwellhq/inkwell/internal/infrastructure/db/redis"
	"github.com/inkwellhq/inkwell/internal/infrastructure/mail"
	"github.com/inkwellhq/inkwell/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "inkwell",
		Pretty:  cfg.Env == "development",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("starting inkwell")

	// Token secrets and TTLs are validated up front: a deployment missing
	// one must not come up at all.
	codec, err := token.NewCodec(cfg.Token.Codec())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	userRepo := mongodb.NewUserRepository(db)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("mongo index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	var sender ports.MailSender
	if cfg.SMTP.Addr != "" {
		sender = mail.NewSMTPSender(cfg.SMTP.Addr, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	} else {
		log.Warn().Msg("SMTP_ADDR not set, emails will be logged instead of sent")
		sender = mail.NewLogSender(log)
	}
	dispatcher := mail.NewDispatcher(0, sender, log)
	dispatcher.Start(ctx)

	e := api.NewRouter(db, rdb, dispatcher, codec, cfg.AppURL, log)

	// Observability and API docs live on the same listener.
	e.Use(echoprometheus.NewMiddleware("inkwell"))
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
