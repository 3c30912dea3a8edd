package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	trendingWindow int
	trendingLimit  int
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show entities accelerating in coverage",
	Long: `Rank entities by mention velocity: mentions in the most recent third of
the window, over the mean daily rate across the whole window.

Examples:
  newsgraph trending
  newsgraph trending --window 30 --limit 20`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

func init() {
	trendingCmd.Flags().IntVarP(&trendingWindow, "window", "w", 7, "window size in days")
	trendingCmd.Flags().IntVarP(&trendingLimit, "limit", "n", 10, "max entities")
}

func runTrending(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := getEngine(ctx, false)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	topics, err := engine.Trending(ctx, trendingWindow, trendingLimit)
	if err != nil {
		return fmt.Errorf("trending: %w", err)
	}

	if len(topics) == 0 {
		fmt.Printf("No mentions in the last %d days.\n", trendingWindow)
		return nil
	}

	fmt.Printf("Trending over the last %d days:\n\n", trendingWindow)
	for i, t := range topics {
		fmt.Printf("%d. %s [%s]  score %.2f (%d recent / %d in window)\n",
			i+1, t.Entity.Name, t.Entity.Type, t.Score, t.RecentMentions, t.WindowMentions)
	}
	return nil
}
