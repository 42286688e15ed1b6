package main

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/cinebook/cinebook/internal/config"
	"github.com/cinebook/cinebook/internal/database"
	"github.com/cinebook/cinebook/internal/handler"
	"github.com/cinebook/cinebook/internal/middleware"
	"github.com/cinebook/cinebook/internal/queue"
	"github.com/cinebook/cinebook/internal/repository"
	"github.com/cinebook/cinebook/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Env == "prod" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logrus.WithError(err).Fatal("database connect failed")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		logrus.WithError(err).Fatal("schema setup failed")
	}
	cancel()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logrus.Warn("redis unavailable, cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	cities := repository.NewCityRepo(db)
	genres := repository.NewGenreRepo(db)
	languages := repository.NewLanguageRepo(db)
	movies := repository.NewMovieRepo(db)
	cinemas := repository.NewCinemaRepo(db)
	seats := repository.NewSeatRepo(db)
	slots := repository.NewSlotRepo(db)
	bookings := repository.NewBookingRepo(db)

	go queue.StartBookingConsumer()

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.Register(e, router.Deps{
		Cfg:       cfg,
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Profile:   handler.NewProfileHandler(users),
		Cities:    handler.NewCatalogHandler(cities, "city"),
		Genres:    handler.NewCatalogHandler(genres, "genre"),
		Languages: handler.NewCatalogHandler(languages, "language"),
		Cinemas:   handler.NewCinemaHandler(cinemas, seats, cities, slots),
		Movies:    handler.NewMovieHandler(movies, slots, genres, languages),
		Slots:     handler.NewSlotHandler(slots, movies, cinemas, seats, bookings),
		Bookings:  handler.NewBookingHandler(bookings, slots, seats),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	})

	addr := ":" + cfg.Port
	logrus.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
	if err := e.Start(addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
