package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"contratos/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  contratos config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded; showing defaults.")
		}
		fmt.Println("Configuration:")
		printConfig(os.Stdout, cfg)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}

func printConfig(w io.Writer, cfg *config.Config) {
	printFeedConfig(w, "contracts", cfg.Feeds.Contracts)
	printFeedConfig(w, "payments", cfg.Feeds.Payments)
	fmt.Fprintf(w, "decode.trim_headers: %t\n", cfg.Decode.TrimHeaders)
	fmt.Fprintf(w, "http.timeout: %s\n", cfg.HTTP.Timeout)
	fmt.Fprintf(w, "http.user_agent: %s\n", cfg.HTTP.UserAgent)
	fmt.Fprintf(w, "http.max_bytes: %d\n", cfg.HTTP.MaxBytes)
	fmt.Fprintf(w, "storage.snapshot_db: %s\n", cfg.Storage.SnapshotDB)
	fmt.Fprintf(w, "storage.keep: %d\n", cfg.Storage.Keep)
	fmt.Fprintf(w, "serve.port: %d\n", cfg.Serve.Port)
	fmt.Fprintf(w, "serve.cache_ttl: %s\n", cfg.Serve.CacheTTL)
	fmt.Fprintf(w, "log.level: %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "log.format: %s\n", cfg.Log.Format)

	names := make([]string, 0, len(cfg.Fields))
	for name := range cfg.Fields {
		names = append(names, name)
	}
	slices.Sort(names)
	fmt.Fprintf(w, "fields: %d override(s)\n", len(names))
	for _, name := range names {
		override := cfg.Fields[name]
		if override.Aliases != nil {
			fmt.Fprintf(w, "fields.%s.aliases: %s\n", name, strings.Join(override.Aliases, " | "))
		}
		if override.Keywords != nil {
			fmt.Fprintf(w, "fields.%s.keywords: %s\n", name, strings.Join(override.Keywords, " | "))
		}
	}
}

func printFeedConfig(w io.Writer, name string, feed config.FeedConfig) {
	fmt.Fprintf(w, "feeds.%s.url: %s\n", name, feed.URL)
	fmt.Fprintf(w, "feeds.%s.format: %s\n", name, feed.Format)
	fmt.Fprintf(w, "feeds.%s.charset: %s\n", name, feed.Charset)
	if feed.Delimiter != "" {
		fmt.Fprintf(w, "feeds.%s.delimiter: %q\n", name, feed.Delimiter)
	}
	if feed.Sheet != "" {
		fmt.Fprintf(w, "feeds.%s.sheet: %s\n", name, feed.Sheet)
	}
}
