package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator/internal/definition"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch <definition>",
	Short: "Fetch a list from its sources",
	Long: `Reads a list definition file, processes each of its sources and
stores the resulting entries and categories.

A list that has already been fetched is only fetched again with --force.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "refetch an already fetched list")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	def, err := definition.Load(args[0])
	if err != nil {
		return err
	}
	p, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	stats, err := p.Fetch(cmd.Context(), *def, fetchForce)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", def.ID, err)
	}

	cmd.Printf("Fetched %s: %d/%d sources processed, %d entries\n",
		def.ID, stats.SourcesProcessed, stats.SourcesTotal, stats.EntriesTotal)
	return nil
}
