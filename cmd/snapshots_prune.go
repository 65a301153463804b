package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contratos/loader"
)

var snapshotsKeep int

var snapshotsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest snapshots of each feed",
	Example: `
  # Keep the newest snapshot of each feed
  contratos snapshots prune --keep 1

  # Only prune the payments feed
  contratos snapshots prune --feed payments --keep 5
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if snapshotsKeep < 1 {
			return fmt.Errorf("--keep must be >= 1")
		}

		store, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer store.Close()

		feeds := []string{loader.FeedContracts, loader.FeedPayments}
		if feed := strings.TrimSpace(snapshotsFeed); feed != "" {
			feeds = []string{feed}
		}

		var total int64
		for _, feed := range feeds {
			deleted, err := store.PruneSnapshots(feed, snapshotsKeep)
			if err != nil {
				return err
			}
			fmt.Printf("Feed %s: deleted %d snapshot(s)\n", feed, deleted)
			total += deleted
		}
		fmt.Printf("Prune completed. Deleted: %d, Kept per feed: %d\n", total, snapshotsKeep)
		return nil
	},
}

func init() {
	snapshotsCmd.AddCommand(snapshotsPruneCmd)

	snapshotsPruneCmd.Flags().IntVar(&snapshotsKeep, "keep", 1, "Number of newest snapshots to keep per feed")
}
