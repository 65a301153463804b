/*
Copyright © 2025 riad@rsworld.eu

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contratos/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "contratos",
	Short: "Search published government contracts and their payments.",
	Long: `
**********************************************
*              CONTRATOS                     *
**********************************************

This CLI downloads the published contracts spreadsheet (and optionally the payments
spreadsheet), resolves their columns into known fields, and lets you search them by
creditor, contract number, SEI process number, commitment or invoice number.

Successful downloads are kept as snapshots in a local SQLite database and used when
the publisher is unreachable.

Supported feed formats:
- CSV (comma or semicolon, inferred from the header): csv
- Tab separated: tsv
- Excel: xlsx, xlsm
`,
	Example: `
  # Create configuration file
  contratos config create

  # Search contracts by creditor, contract number or SEI number
  contratos search "acme"

  # Payments of a contract in March 2025
  contratos payments 2024-001 --month 2025-03

  # Show how spreadsheet columns bind to fields
  contratos fields

  # Export matching contracts to Excel
  contratos export --feed contracts --query acme --output ./contratos.xlsx

  # Serve the JSON API
  contratos serve --port 8080
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.contratos.yaml, then ./.contratos.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

// requiresConfig reports whether cmd needs a valid configuration. The config
// subcommands must keep working on a broken file so that it can be repaired.
func requiresConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "config", "help", "completion":
			return false
		}
	}
	return cmd != nil && cmd != rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".contratos" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".contratos")
	}

	viper.SetEnvPrefix("CONTRATOS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil && verbose {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: contratos config create")
	}
}
