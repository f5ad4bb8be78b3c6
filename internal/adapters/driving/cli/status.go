package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index configuration and size",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx := context.Background()
	stats, err := app.engine.StoreStats(ctx)
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	provider := app.settings.Embedding.Provider.Description()
	if p, ok := app.embedder.(pinger); ok {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := p.Ping(pingCtx); err != nil {
			provider += " " + styleWarn.Render("(unreachable)")
		} else {
			provider += " " + styleScore.Render("(reachable)")
		}
	}

	cmd.Println(styleTitle.Render("vaultrag status"))
	cmd.Printf("  vault:     %s\n", stylePath.Render(app.source.Root()))
	cmd.Printf("  database:  %s\n", styleMuted.Render(app.store.Path()))
	cmd.Printf("  provider:  %s\n", provider)
	cmd.Printf("  model:     %s (%d dimensions)\n", app.engine.Model(), app.settings.Embedding.Dimensions)
	cmd.Printf("  documents: %d\n", stats.Documents)
	cmd.Printf("  chunks:    %d\n", stats.Chunks)
	return nil
}
