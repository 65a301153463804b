package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"contratos/storage"
)

var snapshotsDumpOutput string

var snapshotsDumpCmd = &cobra.Command{
	Use:   "dump <id>",
	Short: "Write the raw body of a stored snapshot to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}

		store, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snapshot, err := store.GetSnapshot(id)
		if err != nil {
			if errors.Is(err, storage.ErrSnapshotNotFound) {
				return fmt.Errorf("snapshot %d not found", id)
			}
			return err
		}

		if err := os.WriteFile(snapshotsDumpOutput, snapshot.Body, 0o644); err != nil {
			return fmt.Errorf("write snapshot body: %w", err)
		}
		fmt.Printf("Snapshot %d (%s, %d bytes) written to %s\n", snapshot.ID, snapshot.Feed, snapshot.Size, snapshotsDumpOutput)
		return nil
	},
}

var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one stored snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseSnapshotID(args[0])
		if err != nil {
			return err
		}

		store, err := openSnapshotStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteSnapshot(id); err != nil {
			if errors.Is(err, storage.ErrSnapshotNotFound) {
				return fmt.Errorf("snapshot %d not found", id)
			}
			return err
		}
		fmt.Printf("Deleted snapshot %d\n", id)
		return nil
	},
}

func init() {
	snapshotsCmd.AddCommand(snapshotsDumpCmd)
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)

	snapshotsDumpCmd.Flags().StringVarP(&snapshotsDumpOutput, "output", "o", "", "Output file path")
	_ = snapshotsDumpCmd.MarkFlagRequired("output")
}

func parseSnapshotID(value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", value)
	}
	return id, nil
}
