package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator/internal/definition"
)

var runCmd = &cobra.Command{
	Use:   "run <definition>...",
	Short: "Fetch, resolve and build lists in one pass",
	Long: `Loads every definition file, fetches and resolves each list from
scratch and distributes them all into one new build.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	defs, err := definition.LoadAll(args)
	if err != nil {
		return err
	}
	p, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	report, err := p.Run(cmd.Context(), defs)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	renderReport(cmd.OutOrStdout(), report)
	return nil
}
