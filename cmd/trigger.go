package cmd

import (
	"context"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/queue"
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Enqueue a catalog sync for a running worker",
	Run: func(_ *cobra.Command, _ []string) {
		trigger()
	},
}

func init() {
	rootCmd.AddCommand(triggerCmd)
}

func trigger() {
	ctx := context.Background()

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

	rdb, err := openRedis(ctx, config.Redis)
	if err != nil {
		logger.Fatal("connecting to redis", zap.Error(err))
	}
	defer rdb.Close()

	task := &queue.Task{Kind: queue.KindSync, Source: "cli"}
	if err := queue.New(rdb).Enqueue(ctx, queue.Sync, task); err != nil {
		logger.Fatal("enqueueing sync", zap.Error(err))
	}

	logger.Info("sync queued", zap.String("task_id", task.ID))
}
