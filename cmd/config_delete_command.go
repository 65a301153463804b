package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contratos/config"
)

var configDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the active configuration file.",
	Long: `Delete the configuration file currently selected by contratos.

The snapshot database referenced by storage.snapshot_db is left in place;
remove it with "contratos snapshots purge".
If no configuration file is active, the command returns an error.`,
	Example: `
  # Delete active config
  contratos config delete

  # Delete config at a custom path
  contratos --configFile ./custom-contratos.yaml config delete
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := viper.ConfigFileUsed()
		if configPath == "" {
			return fmt.Errorf("no configuration file found")
		}

		// A broken file can still be deleted; the hint is skipped then.
		snapshotDB := ""
		if cfg, err := config.LoadAndValidate(); err == nil {
			snapshotDB = strings.TrimSpace(cfg.Storage.SnapshotDB)
		}

		if err := os.Remove(configPath); err != nil {
			return fmt.Errorf("error deleting configuration file: %w", err)
		}

		fmt.Printf("Configuration file successfully deleted: %s\n", configPath)
		if snapshotDB != "" {
			if _, err := os.Stat(snapshotDB); err == nil {
				fmt.Printf("Snapshot database kept: %s\n", snapshotDB)
			}
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDeleteCmd)
}
