package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/readiness-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/readiness-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/queue"
	"github.com/cmlabs-hris/readiness-backend-go/internal/pkg/timezone"
	"github.com/cmlabs-hris/readiness-backend-go/internal/repository/postgresql"
	anomalyService "github.com/cmlabs-hris/readiness-backend-go/internal/service/anomaly"
	checkInService "github.com/cmlabs-hris/readiness-backend-go/internal/service/checkin"
	exceptionService "github.com/cmlabs-hris/readiness-backend-go/internal/service/exception"
	monitoringService "github.com/cmlabs-hris/readiness-backend-go/internal/service/monitoring"
	reportService "github.com/cmlabs-hris/readiness-backend-go/internal/service/report"
	summaryService "github.com/cmlabs-hris/readiness-backend-go/internal/service/summary"
	teamService "github.com/cmlabs-hris/readiness-backend-go/internal/service/team"
	"github.com/cmlabs-hris/readiness-backend-go/migrations/postgres"
	"github.com/redis/go-redis/v9"
)

const (
	appName    = "readiness-cmlabs"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := appHTTP.NewRequestLogger(appName, appVersion, cfg.App.Env, level)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		log.Fatal("Error connecting to database: ", err)
	}
	defer db.Close()

	sqlDB := db.SQLDB()
	if err := postgres.Migrate(sqlDB); err != nil {
		log.Fatal("Error running migrations: ", err)
	}
	_ = sqlDB.Close()

	// Recalculation queue
	var q queue.Queue
	switch cfg.Queue.Driver {
	case config.QueueDriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("Error connecting to redis: ", err)
		}
		redisQueue := queue.NewRedisQueue(rdb, cfg.Queue.Name, cfg.Queue.PollTimeout)
		if n, err := redisQueue.Recover(ctx); err != nil {
			slog.Error("Failed to recover in-flight recalculation jobs", "error", err)
		} else if n > 0 {
			slog.Info("Recovered in-flight recalculation jobs", "count", n)
		}
		q = redisQueue
	case config.QueueDriverMemory:
		slog.Warn("Using in-memory recalculation queue; pending jobs are lost on restart")
		q = queue.NewMemoryQueue(1024, cfg.Queue.PollTimeout)
	}
	defer q.Close()

	clock := timezone.NewResolver(cfg.Monitoring.DefaultTimezone)

	// Repositories
	teamRepo := postgresql.NewTeamRepository(db)
	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	checkInRepo := postgresql.NewCheckInRepository(db)
	exceptionRepo := postgresql.NewExceptionRepository(db)
	holidayRepo := postgresql.NewHolidayRepository(db)
	summaryRepo := postgresql.NewSummaryRepository(db)
	reportRepo := postgresql.NewReportRepository(db)
	transactor := postgresql.NewTransactor(db)

	// Services
	teamResolver := teamService.NewTeamResolver(teamRepo)
	summarySvc := summaryService.NewSummaryService(teamRepo, checkInRepo, exceptionRepo, holidayRepo, summaryRepo, teamResolver, clock)
	trigger := summaryService.NewQueueTrigger(q)
	detector := anomalyService.NewSuddenChangeDetector(checkInRepo, clock, cfg.Monitoring.BaselineDays)
	reportSvc := reportService.NewReportService(reportRepo, userRepo, clock, cfg.Monitoring.HealthReportHistoryMonths)
	monitoringSvc := monitoringService.NewMonitoringService(
		teamRepo,
		checkInRepo,
		exceptionRepo,
		holidayRepo,
		summaryRepo,
		teamResolver,
		summarySvc,
		detector,
		reportSvc,
		clock,
		monitoringService.Options{
			DashboardMinBaseline:    cfg.Monitoring.DashboardMinBaseline,
			SuddenChangeMinBaseline: cfg.Monitoring.SuddenChangeMinBaseline,
			HealthReportDays:        cfg.Monitoring.HealthReportDays,
		},
	)
	exceptionSvc := exceptionService.NewExceptionService(transactor, exceptionRepo, teamRepo, userRepo, trigger)
	checkInSvc := checkInService.NewCheckInService(transactor, checkInRepo, companyRepo, teamRepo, trigger, clock)

	// Recalculation worker
	worker := queue.NewWorker(q, cfg.Queue.MaxAttempts, cfg.Queue.Concurrency)
	worker.Handle(summaryService.JobRecalculateSummaries, summaryService.NewRecalculationHandler(summarySvc))
	worker.Start()

	// Nightly rebuild
	scheduler := cron.NewScheduler(clock.Location(cfg.Monitoring.DefaultTimezone))
	rebuildJobs := cron.NewRebuildJobs(summarySvc, cfg.Rebuild.Cron, cfg.Rebuild.LookbackDays)
	if err := rebuildJobs.RegisterJobs(scheduler); err != nil {
		log.Fatal("Error registering cron jobs: ", err)
	}
	scheduler.Start()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	router := appHTTP.NewRouter(
		JWTService.JWTAuth(),
		appHTTP.RouterOptions{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
		},
		appHTTP.NewMonitoringHandler(monitoringSvc),
		appHTTP.NewCheckInHandler(checkInSvc),
		appHTTP.NewExceptionHandler(exceptionSvc),
		appHTTP.NewTeamSummaryHandler(summarySvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", "error", err)
	}

	scheduler.Stop()
	worker.Stop()
	slog.Info("Shutdown complete")
}
