package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage contratos configuration file values.",
	Long: `Create, edit, display, and delete the contratos configuration file.

The configuration stores:
- feeds.contracts / feeds.payments: url, format, charset, delimiter, sheet
- decode.trim_headers
- http.timeout / http.user_agent / http.max_bytes
- storage.snapshot_db / storage.keep
- serve.port / serve.cache_ttl
- log.level / log.format
- fields.<field>.aliases / fields.<field>.keywords`,
	Example: `
  # Create default config in $HOME/.contratos.yaml
  contratos config create

  # Show active config and source file
  contratos config show

  # Open active config in editor (creates example if missing)
  contratos config edit

  # Delete active config file
  contratos config delete
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
