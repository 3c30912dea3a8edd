package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus size and runtime statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := getEngine(ctx, false)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	fmt.Printf("Articles indexed: %d\n", stats.Articles)
	printOp("Embedding", stats.Runtime.Embedding)
	printOp("Extraction", stats.Runtime.Extraction)
	printOp("Vector queries", stats.Runtime.VectorQuery)
	printOp("Graph queries", stats.Runtime.GraphQuery)
	printOp("Searches", stats.Runtime.Search)
	printOp("Ingests", stats.Runtime.Ingest)
	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	fmt.Printf("%-16s %d calls, avg %.1fms", name, op.Count, op.AvgTimeMs)
	if op.Errors > 0 {
		fmt.Printf(", %d errors", op.Errors)
	}
	fmt.Println()
}
