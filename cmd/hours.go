package cmd

import (
	"fmt"
	"time"

	"github.com/chrisdamba/whattoeat/internal/hours"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/spf13/cobra"
)

var hoursAt string

var hoursCmd = &cobra.Command{
	Use:     "hours [weekday line]...",
	Short:   "Check whether a place with the given weekday hours is open",
	Example: `  whattoeat hours --at 2024-01-01T14:30:00+08:00 "Monday: 9:00 AM – 10:00 PM"`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		if hoursAt != "" {
			t, err := time.Parse(time.RFC3339, hoursAt)
			if err != nil {
				return fmt.Errorf("invalid --at: %w", err)
			}
			now = t
		}

		line, err := hours.DayLine(args, now.Weekday())
		if err != nil {
			line = "(no hours for " + now.Weekday().String() + ")"
		}
		status := "closed"
		if hours.IsOpenNow(&models.OpeningHours{WeekdayText: args}, now) {
			status = "open"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s at %s: %s\n", status, now.Format("Mon 15:04"), line)
		return nil
	},
}

func init() {
	hoursCmd.Flags().StringVar(&hoursAt, "at", "", "Evaluate at this RFC3339 time instead of now")
	rootCmd.AddCommand(hoursCmd)
}
