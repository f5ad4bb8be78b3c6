package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	configfile "github.com/inkwell-notes/vaultrag/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with defaults",
	Long: `Creates the settings file with default values and the given vault
root. Existing settings are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	if flagVault == "" {
		return fmt.Errorf("pass the vault root with --vault")
	}

	cfgStore, err := configfile.NewStore(flagConfig)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfgStore.Path()); err == nil {
		return fmt.Errorf("settings file already exists at %s", cfgStore.Path())
	}

	settings, err := cfgStore.Load()
	if err != nil {
		return err
	}
	settings.Vault.Root = flagVault

	if err := cfgStore.Save(settings); err != nil {
		return err
	}

	cmd.Printf("Wrote %s\n", stylePath.Render(cfgStore.Path()))
	cmd.Println(styleMuted.Render("Edit it to switch providers or tune chunking, then run 'vaultrag index'."))
	return nil
}
