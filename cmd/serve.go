package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/resumerater/resumerater/internal/logger"
	"github.com/resumerater/resumerater/internal/queue"
	"github.com/resumerater/resumerater/internal/server"
	"github.com/resumerater/resumerater/internal/store"
)

const defaultServerAddr = ":8080"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read API over the synced records",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() {
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

	addr := defaultServerAddr
	if config.Server != nil && config.Server.Addr != "" {
		addr = config.Server.Addr
	}

	api := server.New(logger, records, store.NewStatusStore(pool), queue.New(rdb))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("api server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutting down api server", zap.Error(err))
	}

	logger.Info("shutdown complete")
}
