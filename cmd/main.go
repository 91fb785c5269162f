package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"BeerMap-App/internal/config"
	"BeerMap-App/internal/domain/repository"
	"BeerMap-App/internal/handler"
	"BeerMap-App/internal/infrastructure/database"
	"BeerMap-App/internal/infrastructure/firestore"
	"BeerMap-App/internal/logging"
	"BeerMap-App/internal/metrics"
	repoImpl "BeerMap-App/internal/repository"
	"BeerMap-App/internal/usecase"
)

func main() {
	cfg := config.Load()
	logging.BootstrapLogger(cfg.LogLevel)

	votesRepo, checkers, cleanup, err := buildVotesRepository(context.Background(), cfg)
	if err != nil {
		logging.Log.Fatalf("投票リポジトリの初期化失敗: %v", err)
	}
	defer cleanup()

	dominanceUseCase := usecase.NewDominanceUseCase(votesRepo, cfg.DominanceConfig)
	dominanceHandler := handler.NewDominanceHandler(dominanceUseCase)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/api/health", handler.HealthHandler(checkers...))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	dominanceHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logging.Log.Infof("🍺 BeerMap-App server starting on %s (votes source: %s)", addr, cfg.VotesSource)
	if err := r.Run(addr); err != nil {
		logging.Log.Fatalf("Failed to run server: %v", err)
	}
}

// buildVotesRepository 設定に応じて投票データの取得元を組み立てる
// "request" の場合はリポジトリを使わず、リクエストに含まれる投票だけで計算する
func buildVotesRepository(ctx context.Context, cfg *config.Config) (repository.VotesRepository, []handler.HealthChecker, func(), error) {
	noop := func() {}

	switch cfg.VotesSource {
	case config.VotesSourceRequest, "":
		logging.Log.Info("📝 投票はリクエストから受け取ります")
		return nil, nil, noop, nil

	case config.VotesSourcePostgres:
		client, err := database.NewPostgreSQLClientWithRetry(cfg, 3, 2*time.Second)
		if err != nil {
			return nil, nil, noop, err
		}
		logging.Log.Info("✅ PostgreSQL connection successful!")
		return repoImpl.NewPostgresVotesRepository(client), []handler.HealthChecker{client}, func() { client.Close() }, nil

	case config.VotesSourceSupabase:
		client, err := database.NewSupabaseClient(cfg)
		if err != nil {
			return nil, nil, noop, err
		}
		return repoImpl.NewSupabaseVotesRepository(client), []handler.HealthChecker{client}, noop, nil

	case config.VotesSourceFirestore:
		client, err := firestore.NewFirestoreClient(ctx, cfg.StorageConfig)
		if err != nil {
			return nil, nil, noop, err
		}
		return repoImpl.NewFirestoreVotesRepository(client.GetClient()), nil, func() { client.Close() }, nil

	default:
		return nil, nil, noop, fmt.Errorf("未対応の VOTES_SOURCE です: %s", cfg.VotesSource)
	}
}
