package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"contratos/config"
	"contratos/storage"
)

var snapshotsFeed string

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "Inspect and maintain stored feed snapshots",
	Long: `Every successful download of a feed is stored in the snapshot database
(storage.snapshot_db) and served when the publisher is unreachable.
Identical downloads are stored once; only their fetch time is refreshed.`,
	Example: `
  # List snapshots of every feed
  contratos snapshots list

  # Keep only the three newest snapshots per feed
  contratos snapshots prune --keep 3

  # Write a stored snapshot back to disk
  contratos snapshots dump 12 --output ./contratos-12.csv

  # Delete the complete snapshot database
  contratos snapshots purge
`,
}

var snapshotsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snapshots, err := store.ListSnapshots(strings.TrimSpace(snapshotsFeed))
		if err != nil {
			return err
		}
		printSnapshots(os.Stdout, snapshots)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsListCmd)

	snapshotsCmd.PersistentFlags().StringVar(&snapshotsFeed, "feed", "", "Restrict to one feed: contracts|payments (default: all)")
}

func snapshotDBPath() (string, error) {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		return "", err
	}
	path := strings.TrimSpace(cfg.Storage.SnapshotDB)
	if path == "" {
		return "", fmt.Errorf("snapshot storage is disabled (set storage.snapshot_db)")
	}
	return path, nil
}

func openSnapshotStore() (*storage.SQLiteStore, error) {
	path, err := snapshotDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenSQLite(path)
}

func printSnapshots(w io.Writer, snapshots []storage.Snapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "No snapshots stored.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFEED\tFETCHED AT\tSIZE\tCHECKSUM")
	for _, snapshot := range snapshots {
		checksum := snapshot.Checksum
		if len(checksum) > 12 {
			checksum = checksum[:12]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n",
			snapshot.ID,
			snapshot.Feed,
			snapshot.FetchedAt.Local().Format("2006-01-02 15:04:05"),
			snapshot.Size,
			checksum,
		)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Snapshots: %d\n", len(snapshots))
}
