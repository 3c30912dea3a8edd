package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/parser"
	"github.com/newsmesh/newsgraph/internal/service"
)

var (
	ingestConcurrency int
	ingestNoProgress  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <path>",
	Short: "Ingest article files into both stores",
	Long: `Ingest Markdown article files into the vector index and the entity graph.

A path may be a single file or a directory, which is walked recursively.
Articles without pre-annotated entities in their frontmatter go through the
extraction model.

Examples:
  newsgraph ingest ./articles
  newsgraph ingest ./articles --concurrency 8
  newsgraph ingest article.md`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVarP(&ingestConcurrency, "concurrency", "c", 4, "parallel ingestion workers")
	ingestCmd.Flags().BoolVar(&ingestNoProgress, "no-progress", false, "disable the progress display")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := context.Background()

	engine, err := getEngine(ctx, true)
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		result, err := ingestSingleFile(ctx, engine, path)
		if err != nil {
			return err
		}
		verb := "updated"
		if result.Created {
			verb = "ingested"
		}
		fmt.Printf("Article %s %s (%d new mentions, %d relationships)\n",
			result.ArticleID, verb, result.NewMentions, result.Relationships)
		return nil
	}

	opts := service.BatchOptions{Concurrency: ingestConcurrency}

	var result *service.BatchResult
	if ingestNoProgress {
		result, err = engine.IngestDirectory(ctx, path, opts)
	} else {
		result, err = runIngestWithProgress(ctx, engine, path, opts)
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	fmt.Printf("\nFiles processed: %d\n", result.FilesProcessed)
	fmt.Printf("Articles created: %d\n", result.Created)
	fmt.Printf("Articles updated: %d\n", result.Updated)
	fmt.Printf("New mentions:     %d\n", result.NewMentions)
	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nWarnings (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
	}
	return nil
}

func ingestSingleFile(ctx context.Context, engine *service.Engine, path string) (*service.IngestResult, error) {
	parsed, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return engine.IngestDocument(ctx, parsed.Article, parsed.Mentions)
}
