package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contratos/config"
)

var configCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a configuration file from the example template.",
	Long: `Create a new configuration file from the same example template used by "config edit".

The template points feeds.contracts.url at the published contracts spreadsheet and
leaves the payments feed disabled. If a configuration file is already in use, no new
file is written.`,
	Example: `
  # Create default config at $HOME/.contratos.yaml
  contratos config create

  # Create config at a custom path
  contratos --configFile ./contratos.yaml config create
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return saveDefaultConfig()
	},
}

func saveDefaultConfig() error {
	configPath, err := resolveConfigEditPath(cfgFile, viper.ConfigFileUsed())
	if err != nil {
		return err
	}

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil {
		return err
	}

	if !created {
		fmt.Printf("Config file already exists at: %s\n", configPath)
		return nil
	}

	fmt.Printf("New config file created at: %s\n", configPath)
	cfg, err := config.ValidateYAMLContent([]byte(config.ExampleYAML()))
	if err != nil {
		return err
	}
	printConfigSummary(os.Stdout, cfg)
	return nil
}

func init() {
	configCmd.AddCommand(configCreateCmd)
}
