package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/events"
	"github.com/resumerater/resumerater/internal/extract"
	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/pipeline"
	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline worker",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("sync-on-start", true, "enqueue a catalog sync immediately on startup")

	viper.BindPFlag("pipeline.sync-on-start", runCmd.Flags().Lookup("sync-on-start"))
}

// run is the pipeline worker command.
func run(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the resumerater worker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	rdb, err := openRedis(ctx, config.Redis)
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}
	defer rdb.Close()

	mongoClient, records, err := openMongo(ctx, config.Mongo)
	if err != nil {
		logger.Fatal("connecting to mongo", zap.Error(err))
	}
	defer mongoClient.Disconnect(context.Background())

	pool, err := openPostgres(ctx, config.Postgres)
	if err != nil {
		logger.Fatal("connecting to postgres", zap.Error(err))
	}
	defer pool.Close()

	catalog, err := newBambooClient(logger, config.Bamboo)
	if err != nil {
		logger.Fatal("building bamboohr client", zap.Error(err))
	}

	scorer, err := newScorer(ctx, logger, config.AI)
	if err != nil {
		logger.Fatal("building ai scorer", zap.Error(err))
	}

	tasks := queue.New(rdb)

	cfg := pipeline.Config{}
	if config.Pipeline != nil {
		cfg.SyncInterval = time.Duration(config.Pipeline.SyncIntervalMinutes) * time.Minute
		cfg.IdleWait = time.Duration(config.Pipeline.IdleWaitSeconds) * time.Second
	}

	controller := pipeline.New(cfg, pipeline.Deps{
		Catalog: catalog,
		Records: records,
		Status:  store.NewStatusStore(pool),
		Queue:   tasks,
		Events:  events.NewPublisher(rdb),
		PDF:     extract.NewPDF(),
		Word:    extract.NewWord(),
		Scorer:  scorer,
		Logger:  logger,
	})

	if viper.GetBool("pipeline.sync-on-start") {
		task := &queue.Task{Kind: queue.KindSync, Source: "startup"}
		if err := tasks.Enqueue(ctx, queue.Sync, task); err != nil {
			logger.Fatal("enqueueing startup sync", zap.Error(err))
		}
	}

	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("pipeline stopped", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
