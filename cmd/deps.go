package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	r "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/agent"
	"github.com/resumerater/resumerater/internal/bamboo"
	"github.com/resumerater/resumerater/internal/secrets"
	"github.com/resumerater/resumerater/internal/store"
)

const connectTimeout = 10 * time.Second

func openRedis(ctx context.Context, cfg *RedisConfig) (*r.Client, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, errors.New("redis.addr is required")
	}

	rdb := r.NewClient(&r.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}

	return rdb, nil
}

func openMongo(ctx context.Context, cfg *MongoConfig) (*mongo.Client, *store.Records, error) {
	if cfg == nil || cfg.URI == "" {
		return nil, nil, errors.New("mongo.uri is required")
	}
	database := cfg.Database
	if database == "" {
		database = app
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return client, store.NewRecords(client.Database(database)), nil
}

func openPostgres(ctx context.Context, cfg *PostgresConfig) (*pgxpool.Pool, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.New("postgres.url is required")
	}

	pool, err := pgxpool.New(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("creating postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	return pool, nil
}

func newBambooClient(logger *zap.Logger, cfg *BambooConfig) (*bamboo.Client, error) {
	if cfg == nil || cfg.CompanyDomain == "" {
		return nil, errors.New("bamboo.company-domain is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "bamboohr api key",
		File: cfg.APIKeyFile,
		Env:  "BAMBOOHR_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set bamboo.api-key-file or BAMBOOHR_API_KEY_FILE)", err)
	}

	client := bamboo.New(logger, cfg.CompanyDomain, apiKey)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return client, nil
}

func newScorer(ctx context.Context, logger *zap.Logger, cfg *AIConfig) (agent.Scorer, error) {
	if cfg == nil {
		return nil, errors.New("ai configuration is required")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "ai api key",
		File: cfg.APIKeyFile,
		Env:  "AI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.api-key-file or AI_API_KEY_FILE)", err)
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", "openai":
		return agent.NewOpenAIScorer(logger, cfg.Endpoint, apiKey, cfg.Model)
	case "gemini":
		return agent.NewGeminiScorer(ctx, logger, apiKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
