package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/source/filesystem"
	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/logger"
)

var flagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index in sync while the vault changes",
	Long: `Runs an initial index update, then watches the vault and re-runs
the update after each settled burst of changes. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&flagDebounce, "debounce", filesystem.DefaultDebounce, "settle time before reindexing after a change")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := updateIndex(ctx, cmd, app, domain.IndexOptions{})
	if err != nil {
		return err
	}
	printStats(cmd, stats)

	watcher := filesystem.NewWatcher(app.source, flagDebounce)
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Println(styleMuted.Render("Watching for changes (Ctrl-C to stop)..."))

	for {
		select {
		case <-ctx.Done():
			cmd.Println()
			cmd.Println("Stopped.")
			return nil

		case _, ok := <-changes:
			if !ok {
				return nil
			}
			stats, err := updateIndex(ctx, cmd, app, domain.IndexOptions{})
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				// Keep watching: the next save may succeed.
				logger.Warn("Index update failed: %v", err)
				cmd.Println(styleWarn.Render("Index update failed; still watching."))
				continue
			}
			printStats(cmd, stats)
		}
	}
}
