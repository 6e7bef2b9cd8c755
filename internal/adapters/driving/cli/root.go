// Package cli provides the curator command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driving"
	"github.com/custodia-labs/curator/internal/logger"
)

// version is set at build time.
var version = "dev"

var (
	configPath string
	verbose    bool
	noColour   bool
)

// PipelineBuilder wires a pipeline from a configuration file. The returned
// closer releases whatever the pipeline holds open.
type PipelineBuilder func(
	ctx context.Context, configPath string, status domain.StatusFunc,
) (driving.Pipeline, func() error, error)

var (
	pipelineSvc   driving.Pipeline
	buildPipeline PipelineBuilder
	closePipeline func() error
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curate awesome lists from markdown and GitHub sources",
	Long: `Curator turns list definitions into curated, scored lists.

Each list is fetched from its sources, resolved against GitHub and
distributed into a numbered build alongside every other list.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to curator.toml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColour, "no-colour", false, "disable coloured status output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetPipelineBuilder registers how commands obtain a pipeline. The builder
// runs at most once, the first time a command needs the pipeline.
func SetPipelineBuilder(b PipelineBuilder) {
	buildPipeline = b
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closePipeline != nil {
		err = errors.Join(err, closePipeline())
		closePipeline = nil
	}
	return err
}

// requirePipeline returns the pipeline, building it on first use.
func requirePipeline(cmd *cobra.Command) (driving.Pipeline, error) {
	if pipelineSvc != nil {
		return pipelineSvc, nil
	}
	if buildPipeline == nil {
		return nil, errors.New("pipeline not configured")
	}

	p, closer, err := buildPipeline(cmd.Context(), configPath, newStatusPrinter(cmd.ErrOrStderr()).Status)
	if err != nil {
		return nil, err
	}
	pipelineSvc = p
	closePipeline = closer
	return p, nil
}
