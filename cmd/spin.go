package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/chrisdamba/whattoeat/internal/catalog"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/wheel"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	spinCount   int
	spinWeights map[string]int
)

var spinCmd = &cobra.Command{
	Use:   "spin",
	Short: "Spin the wheel offline and compare landing rates with the weights",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if spinCount < 1 {
			return fmt.Errorf("count must be positive, got %d", spinCount)
		}
		cat, err := catalog.Load(cfg.CatalogFile)
		if err != nil {
			return err
		}

		weights := models.DefaultWeights(cat.Sections)
		for k, v := range spinWeights {
			weights[models.FoodCategory(k)] = v
		}
		if err := weights.Validate(cat.Sections); err != nil {
			return err
		}

		spinner := wheel.NewSpinner(seedFor(cfg), wheel.Geometry{PointerDegrees: cfg.PointerDegrees})
		counts := make([]int, len(cat.Sections))
		rotation := 0.0
		bar := progressbar.Default(int64(spinCount), "spinning")
		for i := 0; i < spinCount; i++ {
			out, err := spinner.Spin(rotation, cat.Sections, weights)
			if err != nil {
				return err
			}
			rotation = out.Rotation
			counts[out.Index]++
			_ = bar.Add(1)
		}
		_ = bar.Finish()
		log.Debug().Float64("rotation", rotation).Int("spins", spinCount).Msg("Finished spinning")

		expected := wheel.Probabilities(cat.Sections, weights)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SECTION\tWEIGHT\tEXPECTED\tOBSERVED")
		for i, s := range cat.Sections {
			fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.3f\n", s.Label, weights[s.Category], expected[i], float64(counts[i])/float64(spinCount))
		}
		return tw.Flush()
	},
}

func init() {
	spinCmd.Flags().IntVar(&spinCount, "count", 10000, "Number of spins")
	spinCmd.Flags().StringToIntVar(&spinWeights, "weight", nil, "Category weight, e.g. --weight thai=5,pizza=2")
	rootCmd.AddCommand(spinCmd)
}
