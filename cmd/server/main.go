package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/identity-access/internal/config"
	"github.com/iliyamo/identity-access/internal/database"
	"github.com/iliyamo/identity-access/internal/handler"
	"github.com/iliyamo/identity-access/internal/mailer"
	"github.com/iliyamo/identity-access/internal/queue"
	"github.com/iliyamo/identity-access/internal/repository"
	"github.com/iliyamo/identity-access/internal/router"
	"github.com/iliyamo/identity-access/internal/service"
	"github.com/iliyamo/identity-access/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logrus.WithError(err).Fatal("schema bootstrap failed")
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable; logins proceed, refresh will be denied")
	}

	codec := utils.NewTokenCodec(cfg.JWTSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
		time.Duration(cfg.PurposeTTLMin)*time.Minute)

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	permissions := repository.NewPermissionRepo(db)
	warehouse := repository.NewTokenWarehouse(rdb)
	mail := mailer.NewQueueMailer(cfg.AMQPURL, cfg.SMTPUser, cfg.ServiceURL)

	userSvc := service.NewUserService(users, warehouse, mail, codec, cfg.BcryptCost)
	roleSvc := service.NewRoleService(roles, permissions, codec)
	permSvc := service.NewPermissionService(permissions, codec)

	// Background mail delivery; reconnects on broker failure.
	go queue.StartMailConsumer(cfg.AMQPURL, queue.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		From:     cfg.SMTPUser,
	})

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(userSvc))
	router.RegisterUsers(e, handler.NewUserHandler(userSvc))
	router.RegisterRoles(e, handler.NewRoleHandler(roleSvc), handler.NewPermissionHandler(permSvc))

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
