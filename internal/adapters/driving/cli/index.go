package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

var flagReindex bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Bring the vector index up to date with the vault",
	Long: `Diffs the vault against the stored index state and applies the
difference: new and changed notes are chunked and embedded, vanished
notes are removed. Use --reindex to rebuild every note; cached
embeddings are still reused, so a rebuild is cheap unless content
actually changed.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagReindex, "reindex", false, "reindex every note, ignoring stored state")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := updateIndex(ctx, cmd, app, domain.IndexOptions{ReindexAll: flagReindex})
	if err != nil {
		return err
	}

	printStats(cmd, stats)
	return nil
}

// updateIndex runs one index pass with a progress line on stderr.
func updateIndex(ctx context.Context, cmd *cobra.Command, app *app, opts domain.IndexOptions) (*domain.IndexStats, error) {
	lastLine := 0
	progress := func(p domain.IndexProgress) {
		if p.TotalChunks == 0 {
			return
		}
		line := fmt.Sprintf("Embedding %d/%d chunks", p.CompletedChunks, p.TotalChunks)
		if p.WaitingForRateLimit {
			line += styleWarn.Render(" (rate limited, waiting)")
		}
		// Pad over the previous line before overwriting it.
		for len(line) < lastLine {
			line += " "
		}
		lastLine = len(line)
		cmd.PrintErrf("\r%s", line)
	}

	stats, err := app.engine.UpdateIndex(ctx, opts, progress)
	if lastLine > 0 {
		cmd.PrintErrln()
	}
	if err != nil {
		return nil, fmt.Errorf("index update failed: %w", err)
	}
	return stats, nil
}

func printStats(cmd *cobra.Command, stats *domain.IndexStats) {
	cmd.Println(styleTitle.Render("Index up to date"))
	cmd.Printf("  scanned:  %d documents\n", stats.DocumentsScanned)
	cmd.Printf("  changed:  %d\n", stats.DocumentsChanged)
	cmd.Printf("  removed:  %d\n", stats.DocumentsRemoved)
	if stats.DocumentsFailed > 0 {
		cmd.Println(styleWarn.Render(fmt.Sprintf("  failed:   %d", stats.DocumentsFailed)))
	}
	cmd.Printf("  embedded: %d chunks (%d from cache, %.0f%% hit rate)\n",
		stats.ChunksEmbedded, stats.CacheHits, stats.CacheHitRate()*100)
	cmd.Printf("  took:     %s\n", styleMuted.Render(stats.Duration.Round(time.Millisecond).String()))
}
