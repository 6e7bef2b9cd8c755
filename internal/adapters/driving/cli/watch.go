package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/curator/internal/definition"
	"github.com/custodia-labs/curator/internal/logger"
)

// watchDebounce collapses the burst of events an editor save produces.
var watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch <definition>...",
	Short: "Rebuild whenever a definition file changes",
	Long: `Runs the given definitions once, then watches the files and runs
them again after every change until interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	p, err := requirePipeline(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	rebuild := func() {
		defs, err := definition.LoadAll(args)
		if err != nil {
			logger.Error("Loading definitions: %v", err)
			return
		}
		report, err := p.Run(ctx, defs)
		if err != nil {
			logger.Error("Run failed: %v", err)
			return
		}
		renderReport(cmd.OutOrStdout(), report)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch directories so files replaced by rename keep being seen.
	targets := make(map[string]bool, len(args))
	dirs := make(map[string]bool)
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", arg, err)
		}
		targets[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	rebuild()
	cmd.Printf("Watching %d definition(s), press Ctrl+C to stop\n", len(targets))
	return watchLoop(ctx, watcher, targets, watchDebounce, rebuild)
}

// watchLoop calls onChange once per burst of changes to any target until ctx
// is done or the watcher closes.
func watchLoop(
	ctx context.Context,
	w *fsnotify.Watcher,
	targets map[string]bool,
	debounce time.Duration,
	onChange func(),
) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Definition changed: %s (%s)", event.Name, event.Op)
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-fire:
			fire = nil
			onChange()
		}
	}
}
