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

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/centrovital/agenda-api/internal/app"
	"github.com/centrovital/agenda-api/internal/config"
	"github.com/centrovital/agenda-api/internal/controller"
	"github.com/centrovital/agenda-api/internal/normalize"
	"github.com/centrovital/agenda-api/internal/repository"
	"github.com/centrovital/agenda-api/internal/schedule"
	"github.com/centrovital/agenda-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("starting agenda api",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, "migrations", logger)
	if err != nil {
		logger.Fatal("init migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	blockRepo := repository.NewBlockRepository(pool)
	planRepo := repository.NewPlanRepository(pool)

	builder := schedule.NewBuilder(logger)
	scheduleSvc := service.NewScheduleService(appointmentRepo, blockRepo, planRepo, builder, logger)
	bookingSvc := service.NewBookingService(appointmentRepo, blockRepo, planRepo, logger)
	blockSvc := service.NewBlockService(blockRepo, logger)
	importSvc := service.NewImportService(appointmentRepo, blockRepo, normalize.NewDecoder(logger), logger)

	router := controller.NewRouter(cfg.JWTSecret, scheduleSvc, bookingSvc, blockSvc, planRepo, importSvc, userRepo, logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown http server", zap.Error(err))
	}
}
