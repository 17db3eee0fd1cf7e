package cmd

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/pipeline"
	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/store"
)

const (
	promptDone = "done"
	promptAll  = "re-enqueue all"
)

var requeueCmd = &cobra.Command{
	Use:   "requeue",
	Short: "Interactively re-enqueue failed applications",
	Run: func(_ *cobra.Command, _ []string) {
		requeue()
	},
}

func init() {
	rootCmd.AddCommand(requeueCmd)
}

func requeue() {
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

	failures, err := store.NewStatusStore(pool).ListFailures(ctx)
	if err != nil {
		logger.Fatal("listing failed applications", zap.Error(err))
	}
	if len(failures) == 0 {
		logger.Info("exiting", zap.String("reason", "no failed applications"))
		return
	}

	tasks := queue.New(rdb)
	remaining := failures

	for len(remaining) > 0 {
		items := make([]string, 0, len(remaining)+1)
		for _, failure := range remaining {
			items = append(items, fmt.Sprintf("%d %s/%s at %s",
				failure.BambooID, failure.Step, failure.Status,
				failure.UpdatedAt.Format("2006-01-02 15:04"),
			))
		}

		prompt := promptui.Select{
			Label: "Choose a failed application to re-enqueue",
			Items: append(items, promptAll, promptDone),
		}

		_, selected, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if selected == promptDone {
			return
		}
		if selected == promptAll {
			for _, failure := range remaining {
				if err := requeueOne(ctx, logger, records, tasks, failure); err != nil {
					logger.Warn("skipping application", zap.Int("bamboo_id", failure.BambooID), zap.Error(err))
				}
			}
			return
		}

		bambooID, err := strconv.Atoi(strings.Split(selected, " ")[0])
		if err != nil {
			logger.Fatal("parsing selection", zap.Error(err))
		}

		var failure *store.PipelineStatus
		for _, f := range remaining {
			if f.BambooID == bambooID {
				failure = f
				break
			}
		}
		if failure == nil {
			logger.Fatal("there is no such failed application", zap.Int("bamboo_id", bambooID))
		}

		if err := requeueOne(ctx, logger, records, tasks, failure); err != nil {
			logger.Warn("skipping application", zap.Int("bamboo_id", bambooID), zap.Error(err))
			continue
		}

		filtered := remaining[:0]
		for _, f := range remaining {
			if f.BambooID != bambooID {
				filtered = append(filtered, f)
			}
		}
		remaining = filtered
	}
}

func requeueOne(ctx context.Context, logger *zap.Logger, records *store.Records, tasks *queue.RedisQueue, failure *store.PipelineStatus) error {
	switch failure.Step {
	case pipeline.StepSync:
		task := &queue.Task{Kind: queue.KindSync, Source: "requeue"}
		if err := tasks.Enqueue(ctx, queue.Sync, task); err != nil {
			return err
		}
		logger.Info("sync queued", zap.String("task_id", task.ID))
		return nil

	case pipeline.StepDownload:
		app, err := records.FindApplication(ctx, failure.BambooID)
		if err != nil {
			return err
		}
		if app == nil {
			return fmt.Errorf("application %d is not in the record store", failure.BambooID)
		}
		fileID := app.ResumeFileID()
		if fileID == 0 {
			return fmt.Errorf("application %d has no known resume file", failure.BambooID)
		}
		task := &queue.Task{Kind: queue.KindExtract, AppID: failure.BambooID, FileID: fileID, Source: "requeue"}
		if err := tasks.Enqueue(ctx, queue.ResumeProcessing, task); err != nil {
			return err
		}
		logger.Info("extraction queued", zap.Int("bamboo_id", failure.BambooID), zap.String("task_id", task.ID))
		return nil

	case pipeline.StepRate:
		task := &queue.Task{Kind: queue.KindRate, AppID: failure.BambooID, Source: "requeue"}
		if err := tasks.Enqueue(ctx, queue.Rating, task); err != nil {
			return err
		}
		logger.Info("rating queued", zap.Int("bamboo_id", failure.BambooID), zap.String("task_id", task.ID))
		return nil

	default:
		return fmt.Errorf("unknown pipeline step %q", failure.Step)
	}
}
