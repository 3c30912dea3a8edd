package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/models"
)

var (
	timelineStart string
	timelineEnd   string
	timelineLimit int
)

var timelineCmd = &cobra.Command{
	Use:   "timeline <entity>",
	Short: "Show an entity's mention timeline",
	Long: `Show when an entity was mentioned, bucketed by day, with the activity
trend and the entities it most often shares articles with.

Dates are YYYY-MM-DD; omitted bounds default to the entity's full
first-seen-to-last-seen span.

Examples:
  newsgraph timeline "Tesla"
  newsgraph timeline "Elon Musk" --start 2026-01-01 --end 2026-03-01`,
	Args: cobra.ExactArgs(1),
	RunE: runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&timelineStart, "start", "", "range start (YYYY-MM-DD)")
	timelineCmd.Flags().StringVar(&timelineEnd, "end", "", "range end (YYYY-MM-DD)")
	timelineCmd.Flags().IntVarP(&timelineLimit, "limit", "n", 50, "max mention events")
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

func runTimeline(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := getEngine(ctx, false)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	start, err := parseDateFlag(timelineStart)
	if err != nil {
		return err
	}
	end, err := parseDateFlag(timelineEnd)
	if err != nil {
		return err
	}
	if !end.IsZero() {
		// Inclusive end of day.
		end = end.Add(24*time.Hour - time.Nanosecond)
	}

	timeline, err := engine.Timeline(ctx, args[0], start, end, timelineLimit)
	if errors.Is(err, models.ErrEntityNotFound) {
		fmt.Printf("No mentions found for %q.\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("timeline: %w", err)
	}

	fmt.Printf("%s [%s]  %d mentions, trend: %s\n",
		timeline.Entity.Name, timeline.Entity.Type, timeline.TotalMentions, timeline.Trend)
	fmt.Printf("Range: %s to %s\n",
		timeline.Start.Format("2006-01-02"), timeline.End.Format("2006-01-02"))
	if !timeline.MostActiveDay.IsZero() {
		fmt.Printf("Most active day: %s\n", timeline.MostActiveDay.Format("2006-01-02"))
	}

	if len(timeline.Buckets) > 0 {
		fmt.Println("\nActivity:")
		for _, b := range timeline.Buckets {
			fmt.Printf("  %s  %d\n", b.Day.Format("2006-01-02"), b.Count)
		}
	}

	if len(timeline.Entries) > 0 {
		fmt.Println("\nMentions:")
		for _, e := range timeline.Entries {
			fmt.Printf("  %s  %s\n", e.PublishedAt.Format("2006-01-02"), e.Title)
		}
	}

	if len(timeline.TopCoMentions) > 0 {
		fmt.Println("\nCo-mentioned with:")
		for _, c := range timeline.TopCoMentions {
			fmt.Printf("  %s [%s]  %d shared articles\n", c.Entity.Name, c.Entity.Type, c.Count)
		}
	}
	return nil
}
