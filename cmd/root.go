package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "resumerater"
)

type Config struct {
	Bamboo   *BambooConfig   `mapstructure:"bamboo"`
	Mongo    *MongoConfig    `mapstructure:"mongo"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Pipeline *PipelineConfig `mapstructure:"pipeline"`
	AI       *AIConfig       `mapstructure:"ai"`
	Server   *ServerConfig   `mapstructure:"server"`
}

type BambooConfig struct {
	CompanyDomain string `mapstructure:"company-domain"`
	APIKeyFile    string `mapstructure:"api-key-file"`
	UserAgent     string `mapstructure:"user-agent"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type PipelineConfig struct {
	SyncIntervalMinutes int  `mapstructure:"sync-interval-minutes"`
	IdleWaitSeconds     int  `mapstructure:"idle-wait-seconds"`
	SyncOnStart         bool `mapstructure:"sync-on-start"`
}

type AIConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	Endpoint   string `mapstructure:"endpoint"`
	APIKeyFile string `mapstructure:"api-key-file"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "resumerater syncs job applications from BambooHR, extracts resume text and rates candidates with an AI agent",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("bamboo.api-key-file", "BAMBOOHR_API_KEY_FILE"); err != nil {
		log.Fatalf("binding BAMBOOHR_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.api-key-file", "AI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding AI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is resumerater.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// The version command works without a config file.
	needsConfig := false
	for _, c := range []*cobra.Command{runCmd, serveCmd, migrateCmd, triggerCmd, requeueCmd} {
		if c.CalledAs() != "" {
			needsConfig = true
			break
		}
	}
	if !needsConfig {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
