package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/models"
)

var (
	searchEntity    string
	searchLimit     int
	searchThreshold float64
	searchHops      int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search articles without LLM synthesis",
	Long: `Search the article corpus with fused vector and graph ranking.

The query text is embedded and matched against article embeddings; when a
focus entity is given, articles connected to it through the entity graph
contribute a second relevance signal.

Examples:
  newsgraph search "battery supply chain"
  newsgraph search "layoffs" --entity "OpenAI"
  newsgraph search "chip export rules" --limit 20 --threshold 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchEntity, "entity", "e", "", "focus entity for the graph signal")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "max results (default from config)")
	searchCmd.Flags().Float64VarP(&searchThreshold, "threshold", "t", 0, "minimum cosine similarity (default from config)")
	searchCmd.Flags().IntVar(&searchHops, "hops", 0, "graph traversal depth from the focus entity")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := getEngine(ctx, true)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	set, err := engine.Search(ctx, models.Query{
		Text:        args[0],
		FocusEntity: searchEntity,
		Threshold:   searchThreshold,
		Limit:       searchLimit,
		MaxHops:     searchHops,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if set.Partial {
		fmt.Printf("Warning: partial results (%s signal only)\n\n", set.Signal)
	}
	if len(set.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(set.Results))
	for i, r := range set.Results {
		fmt.Printf("%d. %s [%.3f]\n", i+1, r.Article.Title, r.Score)
		fmt.Printf("   %s, %s\n", r.Article.Source, r.Article.PublishedAt.Format("2006-01-02"))
		if verbose {
			if r.VectorScore != nil {
				fmt.Printf("   vector: %.3f\n", *r.VectorScore)
			}
			if r.GraphScore != nil {
				fmt.Printf("   graph:  %.3f via %v\n", *r.GraphScore, r.MatchedEntities)
			}
		}
		fmt.Println()
	}

	return nil
}
