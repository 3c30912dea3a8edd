package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/service"
)

var (
	askEntity   string
	askLimit    int
	askNoStream bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question answered from the article corpus",
	Long: `Ask a question and get an answer synthesized from the most relevant
articles. Retrieval uses the same fused ranking as 'search'.

Examples:
  newsgraph ask "why did the merger fall through?"
  newsgraph ask "what is Tesla's position on tariffs?" --entity "Tesla"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askEntity, "entity", "e", "", "focus entity for the graph signal")
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 5, "articles handed to the model")
	askCmd.Flags().BoolVar(&askNoStream, "no-stream", false, "wait for the full answer instead of streaming")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	engine, err := getEngine(ctx, true)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	var answer *service.Answer
	if askNoStream {
		answer, err = engine.Ask(ctx, args[0], askEntity, askLimit)
	} else {
		answer, err = engine.AskStream(ctx, args[0], askEntity, askLimit, func(token string) error {
			fmt.Print(token)
			return nil
		})
	}
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if askNoStream || len(answer.Sources) == 0 {
		// Streaming already printed the answer token by token.
		fmt.Println(answer.Text)
	} else {
		fmt.Println()
	}
	if answer.Partial {
		fmt.Println("\nWarning: answer based on partial retrieval")
	}

	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for i, s := range answer.Sources {
			fmt.Printf("  [%d] %s (%s, %s)\n", i+1, s.Article.Title, s.Article.Source,
				s.Article.PublishedAt.Format("2006-01-02"))
		}
	}
	return nil
}
