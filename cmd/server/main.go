package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/desk-booking/internal/clock"
	"github.com/iliyamo/desk-booking/internal/config"
	"github.com/iliyamo/desk-booking/internal/database"
	"github.com/iliyamo/desk-booking/internal/handler"
	"github.com/iliyamo/desk-booking/internal/logger"
	"github.com/iliyamo/desk-booking/internal/middleware"
	"github.com/iliyamo/desk-booking/internal/queue"
	"github.com/iliyamo/desk-booking/internal/repository"
	"github.com/iliyamo/desk-booking/internal/router"
	"github.com/iliyamo/desk-booking/internal/scheduler"
	"github.com/iliyamo/desk-booking/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	// Redis is optional: without it the rate limiter runs in-process and
	// the response cache passes through.
	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable; running without cache", zap.Error(err))
	} else {
		defer rdb.Close()
	}

	var events service.EventPublisher
	if cfg.Events.Enabled {
		pub := queue.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, log)
		defer pub.Close()
		events = pub
	}

	clk := clock.System{Loc: cfg.Location()}

	seatRepo := repository.NewSeatRepo(db)
	resRepo := repository.NewReservationRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	sweeper := service.NewSweeper(resRepo, clk, events, log)
	authSvc := service.NewAuthService(service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, userRepo, tokenRepo, log)
	seatSvc := service.NewSeatService(seatRepo, resRepo, sweeper, clk, log)
	resSvc := service.NewReservationService(seatRepo, resRepo, sweeper, clk, events, log)
	statsSvc := service.NewStatsService(seatRepo, userRepo, statsRepo, sweeper, clk, log)

	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb, log)
	sweeper.InvalidateOnChange(cache)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log))

	seatH := handler.NewSeatHandler(seatSvc, cache)
	router.RegisterRoutes(e, db)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), cfg.JWTSecret)
	router.RegisterSeats(e, seatH, cache, cfg.JWTSecret)
	router.RegisterReservations(e, handler.NewReservationHandler(resSvc, cache), cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(statsSvc, authSvc), seatH, cfg.JWTSecret)
	router.RegisterCron(e, sweeper, cfg.Sweep.CronSecret)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("tz", cfg.Timezone))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if cfg.Sweep.Enabled {
		g.Go(func() error {
			scheduler.New(sweeper, cfg.Sweep.Interval, log).Run(gctx)
			return nil
		})
	}
	if cfg.Events.Enabled {
		g.Go(func() error {
			queue.NewAuditConsumer(cfg.Events, log).Run(gctx)
			return nil
		})
	}

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}
