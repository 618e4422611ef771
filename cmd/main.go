package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/KEN19920421/30sec-challenge-sub003/internal/cache"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/config"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/handler"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/repository"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/scheduler"
	"github.com/KEN19920421/30sec-challenge-sub003/internal/service"
	"github.com/KEN19920421/30sec-challenge-sub003/pkg/logger"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer closeDatabase(db)

	rdb, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis:", err)
	}
	defer rdb.Close()

	challengeRepo := repository.NewChallengeRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	queueRepo := repository.NewVoteQueueRepository(db)
	userRepo := repository.NewUserRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	locker := cache.NewLocker(rdb)
	views := cache.NewViewCache(rdb)
	leaderboard := cache.NewLeaderboard(rdb)

	scoreSvc := service.NewScoreService(submissionRepo, voteRepo, leaderboard)
	budgetSvc := service.NewBudgetService(userRepo, voteRepo, rewardRepo)
	queueSvc := service.NewVoteQueueService(queueRepo, submissionRepo, voteRepo, blockRepo)
	voteSvc := service.NewVoteService(submissionRepo, challengeRepo, voteRepo, scoreSvc, budgetSvc, leaderboard, queueSvc)
	challengeSvc := service.NewChallengeService(challengeRepo, views)
	leaderboardSvc := service.NewLeaderboardService(submissionRepo, leaderboard)

	lifecycle := scheduler.NewLifecycleScheduler(challengeRepo, locker, challengeSvc, cfg.Scheduler)
	if err := lifecycle.Start(); err != nil {
		logger.Fatal("Failed to start scheduler:", err)
	}
	defer lifecycle.Stop()

	router := setupHTTPRouter(challengeSvc, leaderboardSvc, queueSvc, voteSvc, budgetSvc, scoreSvc, lifecycle, db, rdb)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting on port ", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error:", err)
	}

	logger.Info("Server stopped")
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	// TranslateError turns the mysql duplicate-key error into
	// gorm.ErrDuplicatedKey, which the vote repository relies on.
	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	return db, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get database instance:", err)
		return
	}
	sqlDB.Close()
}

func setupHTTPRouter(
	challengeSvc *service.ChallengeService,
	leaderboardSvc *service.LeaderboardService,
	queueSvc *service.VoteQueueService,
	voteSvc *service.VoteService,
	budgetSvc *service.BudgetService,
	scoreSvc *service.ScoreService,
	lifecycle *scheduler.LifecycleScheduler,
	db *gorm.DB,
	rdb *redis.Client,
) http.Handler {
	router := http.NewServeMux()

	challengeHandler := handler.NewChallengeHandler(challengeSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	queueHandler := handler.NewQueueHandler(queueSvc)
	voteHandler := handler.NewVoteHandler(voteSvc, budgetSvc)
	adminHandler := handler.NewAdminHandler(scoreSvc, lifecycle.RunTick)

	router.HandleFunc("/api/challenges/current", challengeHandler.GetCurrent)
	router.HandleFunc("/api/challenges/upcoming", challengeHandler.GetUpcoming)
	router.HandleFunc("/api/challenges/history", challengeHandler.GetHistory)
	router.HandleFunc("/api/challenges/", leaderboardHandler.GetTopN)
	router.HandleFunc("/api/queue/next", queueHandler.GetNextBatch)
	router.HandleFunc("/api/votes", voteHandler.CastVote)
	router.HandleFunc("/api/votes/stats", voteHandler.GetVoteStats)
	router.HandleFunc("/api/votes/balance", voteHandler.GetSuperVoteBalance)
	router.HandleFunc("/api/admin/lifecycle/tick", adminHandler.TriggerTick)
	router.HandleFunc("/api/admin/recalculate", adminHandler.RecalculateChallenge)

	router.Handle("/metrics", promhttp.Handler())
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return router
}
