package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/whattoeat/internal/cloudwriter"
	"github.com/chrisdamba/whattoeat/internal/export"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportSince string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded spins to a Parquet file, locally or on S3",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage != models.StoragePostgres {
			return fmt.Errorf("export reads spins from postgres, storage is %q", cfg.Storage)
		}
		since, err := parseSince(exportSince, time.Now())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.close()

		var factory cloudwriter.CloudWriterFactory
		if cfg.Export.Destination == export.DestinationS3 {
			f, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Export.Region)
			if err != nil {
				return err
			}
			factory = f
		}

		n, target, err := export.NewExporter(st.spins, cfg.Export, factory).Export(ctx, since)
		if err != nil {
			return err
		}
		if n == 0 {
			log.Warn().Time("since", since).Msg("No spins recorded in that window")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d spins to %s\n", n, target)
		return nil
	},
}

// parseSince accepts an RFC3339 time or a duration counted back from now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --since %q: want RFC3339 or a duration like 24h", s)
	}
	return now.Add(-d), nil
}

func init() {
	exportCmd.Flags().StringVar(&exportSince, "since", "24h", "Export spins since this RFC3339 time or duration ago (empty for all)")
	exportCmd.Flags().String("destination", "local", "Export destination (local or s3)")
	exportCmd.Flags().String("path", "exports", "Local directory or S3 key prefix")
	exportCmd.Flags().String("bucket", "", "S3 bucket")
	exportCmd.Flags().String("region", "", "AWS region")

	_ = viper.BindPFlag("export.destination", exportCmd.Flags().Lookup("destination"))
	_ = viper.BindPFlag("export.path", exportCmd.Flags().Lookup("path"))
	_ = viper.BindPFlag("export.bucket", exportCmd.Flags().Lookup("bucket"))
	_ = viper.BindPFlag("export.region", exportCmd.Flags().Lookup("region"))
	rootCmd.AddCommand(exportCmd)
}
