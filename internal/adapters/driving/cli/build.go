package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build <list-id>...",
	Short: "Distribute resolved lists into a new build",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := requirePipeline(cmd)
	if err != nil {
		return err
	}

	report, err := p.Build(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	renderReport(cmd.OutOrStdout(), report)
	return nil
}
