package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveForce bool

var resolveCmd = &cobra.Command{
	Use:   "resolve <list-id>",
	Short: "Resolve the entries of a fetched list",
	Long: `Enriches every entry of a fetched list with repository metadata.
Cached results are reused; --force resolves an already resolved list again.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVarP(&resolveForce, "force", "f", false, "resolve an already resolved list again")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	p, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	listID := args[0]
	stats, err := p.Resolve(cmd.Context(), listID, resolveForce)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", listID, err)
	}

	cmd.Printf("Resolved %s: %d/%d entries\n", listID, stats.EntriesResolved, stats.EntriesTotal)
	return nil
}
