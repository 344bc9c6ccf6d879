package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "whattoeat",
	Short: "Spin a wheel to decide what to eat",
	Long: `whattoeat serves the What To Eat wheel: a weighted spin picks a cuisine and a dish,
then nearby restaurants and a recommendation are looked up for it.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.whattoeat.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console or json)")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed for the wheel (0 picks one from the clock)")
	rootCmd.PersistentFlags().String("storage", "memory", "Storage backend (memory or postgres)")
	rootCmd.PersistentFlags().String("database-url", "", "Postgres connection string")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("seed", rootCmd.PersistentFlags().Lookup("seed"))
	_ = viper.BindPFlag("storage", rootCmd.PersistentFlags().Lookup("storage"))
	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("database-url"))
}

func initConfig() {
	// a missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	if cfgFile == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".whattoeat")
		if err := viper.ReadInConfig(); err == nil {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// loadConfig decodes flags, environment and config file, and sets up
// logging from the result.
func loadConfig() (*models.Config, error) {
	cfg, err := models.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *models.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Caller().Logger()
}

func seedFor(cfg *models.Config) int64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return time.Now().UnixNano()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
