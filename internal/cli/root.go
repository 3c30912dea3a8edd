// Package cli provides the command-line interface for newsgraph.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/newsmesh/newsgraph/internal/config"
	"github.com/newsmesh/newsgraph/internal/graph"
	"github.com/newsmesh/newsgraph/internal/llm"
	"github.com/newsmesh/newsgraph/internal/metrics"
	"github.com/newsmesh/newsgraph/internal/service"
	"github.com/newsmesh/newsgraph/internal/vector"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and store clients
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	graphClient *graph.Client
	vectorIndex *vector.PGIndex
	collector   *metrics.Collector

	// Lazy-initialized LLM collaborators
	embedder llm.Embedder
	model    *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "newsgraph",
	Short: "Hybrid retrieval engine over news articles",
	Long: `Newsgraph indexes news articles into a vector store and an entity graph,
then answers queries by fusing semantic similarity with graph evidence.

Articles are Markdown files with YAML frontmatter. Search combines cosine
similarity over embeddings with entity-graph traversal; timelines and
trending scores come from the same graph.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store connections for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, closeLogger = config.NewLogger(cfg)
		collector = metrics.NewCollector()

		ctx := context.Background()

		var err error
		graphClient, err = graph.NewClient(ctx, graph.Config{
			URL:       cfg.GraphURL,
			Namespace: cfg.GraphNamespace,
			Database:  cfg.GraphDatabase,
			Username:  cfg.GraphUser,
			Password:  cfg.GraphPass,
			AuthLevel: cfg.GraphAuthLevel,
		}, logger)
		if err != nil {
			return fmt.Errorf("connect to graph store: %w", err)
		}
		if err := graphClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize graph schema: %w", err)
		}

		vectorIndex, err = vector.NewPGIndex(ctx, cfg.VectorDSN, cfg.EmbedDim, logger)
		if err != nil {
			return fmt.Errorf("connect to vector index: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if vectorIndex != nil {
			vectorIndex.Close()
		}
		if graphClient != nil {
			if err := graphClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close graph store: %v\n", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// getEngine builds the engine, initializing the LLM collaborators when a
// command needs them.
func getEngine(ctx context.Context, requireLLM bool) (*service.Engine, error) {
	var opts []service.Option

	if requireLLM && embedder == nil {
		base, err := llm.NewEmbedder(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init embedder: %w", err)
		}
		embedder, err = llm.NewCachedEmbedder(base, 512, logger)
		if err != nil {
			return nil, fmt.Errorf("init embedding cache: %w", err)
		}
		model, err = llm.NewModel(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("init model: %w", err)
		}
	}
	if embedder != nil {
		opts = append(opts,
			service.WithEmbedder(embedder),
			service.WithExtractor(llm.NewModelExtractor(model, logger)),
			service.WithModel(model),
		)
	}

	return service.NewEngine(vectorIndex, graphClient, cfg, collector, logger, opts...), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(trendingCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
