package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	purgePromptInput  io.Reader = os.Stdin
	purgePromptOutput io.Writer = os.Stdout
)

var snapshotsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete the complete snapshot database file",
	Long: `Destructive snapshot cleanup command.

This command deletes the complete SQLite snapshot database file. Without snapshots
the feeds can no longer be served while the publisher is unreachable.
Before deletion, an interactive security prompt requires typing exactly "Y".`,
	Example: `
  # Delete the snapshot database (requires interactive confirmation)
  contratos snapshots purge
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := snapshotDBPath()
		if err != nil {
			return err
		}

		confirmed, err := confirmPurgePrompt(purgePromptInput, purgePromptOutput, path)
		if err != nil {
			return err
		}
		if !confirmed {
			return fmt.Errorf("purge aborted: confirmation was not 'Y'")
		}

		if err := removeDatabaseFile(path); err != nil {
			return err
		}
		fmt.Printf("Deleted snapshot database: %s\n", path)
		return nil
	},
}

func init() {
	snapshotsCmd.AddCommand(snapshotsPurgeCmd)
}

func confirmPurgePrompt(input io.Reader, output io.Writer, path string) (bool, error) {
	if input == nil {
		return false, fmt.Errorf("purge confirmation input is not available")
	}

	if output == nil {
		output = io.Discard
	}

	if _, err := fmt.Fprintf(output, "Delete snapshot database %q? Type Y to confirm: ", path); err != nil {
		return false, fmt.Errorf("write purge confirmation prompt: %w", err)
	}

	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			return strings.TrimSpace(line) == "Y", nil
		}
		return false, fmt.Errorf("read purge confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "Y", nil
}

func removeDatabaseFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("database file not found: %s", path)
		}
		return fmt.Errorf("stat database file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("database path is a directory: %s", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete database file: %w", err)
	}
	return nil
}
