// Package cli implements the command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/inkwell-notes/vaultrag/internal/logger"
)

var (
	// version is set by Execute.
	version = "dev"

	flagVerbose bool
	flagConfig  string
	flagVault   string
)

var rootCmd = &cobra.Command{
	Use:   "vaultrag",
	Short: "Semantic index and retrieval for a notes vault",
	Long: `vaultrag keeps a local vector index in sync with a directory of
notes and answers similarity queries against it. Indexing is
incremental: only added, changed and removed notes are touched, and
embeddings are cached by content hash so renames and reverts cost
nothing.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "settings file path (default ~/.vaultrag/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagVault, "vault", "", "vault root, overriding the settings file")
}

// Execute runs the CLI with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}
