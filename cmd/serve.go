package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chrisdamba/whattoeat/internal/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wheel HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := buildService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		if cfg.LogLevel != "debug" {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           api.NewRouter(svc),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.ListenAddr).Msg("Listening")
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
			log.Info().Msg("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("listen-addr", ":8080", "Address the API listens on")
	serveCmd.Flags().String("places-api-key", "", "Google Places API key")
	serveCmd.Flags().String("recommendation-url", "", "Recommendation service endpoint")
	serveCmd.Flags().Bool("kafka-enabled", false, "Publish events to Kafka")
	serveCmd.Flags().String("kafka-broker-list", "localhost:9092", "Kafka broker list")
	serveCmd.Flags().String("output-file", "", "Directory for JSON event files (if not using Kafka)")

	for key, flag := range map[string]string{
		"listen_addr":        "listen-addr",
		"places_api_key":     "places-api-key",
		"recommendation_url": "recommendation-url",
		"kafka_enabled":      "kafka-enabled",
		"kafka_broker_list":  "kafka-broker-list",
		"output_file_path":   "output-file",
	} {
		_ = viper.BindPFlag(key, serveCmd.Flags().Lookup(flag))
	}
	rootCmd.AddCommand(serveCmd)
}
