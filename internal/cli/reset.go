package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all indexed data from both stores",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip the confirmation prompt")
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetForce {
		fmt.Print("This deletes all articles, entities and relationships. Continue? [y/N] ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ctx := context.Background()
	if err := vectorIndex.Wipe(ctx); err != nil {
		return fmt.Errorf("wipe vector index: %w", err)
	}
	if err := graphClient.WipeData(ctx); err != nil {
		return fmt.Errorf("wipe graph store: %w", err)
	}

	fmt.Println("All data deleted.")
	return nil
}
