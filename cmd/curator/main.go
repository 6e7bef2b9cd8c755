// Command curator builds curated lists from list definitions.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/curator/internal/adapters/driving/cli"
	"github.com/custodia-labs/curator/internal/app"
	"github.com/custodia-labs/curator/internal/core/domain"
	"github.com/custodia-labs/curator/internal/core/ports/driving"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetVersion(version)
	cli.SetPipelineBuilder(func(
		ctx context.Context, configPath string, status domain.StatusFunc,
	) (driving.Pipeline, func() error, error) {
		a, err := app.New(ctx, configPath, app.Options{Status: status})
		if err != nil {
			return nil, nil, err
		}
		return a.Pipeline, a.Close, nil
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
