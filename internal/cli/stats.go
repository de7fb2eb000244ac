package cli

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// newStatsCmd creates the stats command, reporting record counts per
// partition and total bytes on disk.
func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show record counts and disk usage for the cache root",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			backend := client.Backend()
			keys, err := backend.Keys(cmd.Context(), "")
			if err != nil {
				return err
			}

			partitions := make(map[string]int)
			for _, key := range keys {
				partitions[partitionOf(key)]++
			}

			names := make([]string, 0, len(partitions))
			for name := range partitions {
				names = append(names, name)
			}
			sort.Strings(names)

			cmd.Printf("Cache root: %s\n", backend.Root())
			cmd.Printf("Records: %d\n", len(keys))
			for _, name := range names {
				cmd.Printf("  %-28s %d\n", name, partitions[name])
			}

			size, err := dirSize(backend.Root())
			if err != nil {
				return err
			}
			cmd.Printf("Disk usage: %d bytes\n", size)

			return nil
		},
	}
}

// partitionOf groups a record key for display: flat ephemeral records
// together, partitioned records by their directory.
func partitionOf(key string) string {
	idx := strings.LastIndex(key, "/")
	if idx < 0 {
		return "(ephemeral)"
	}
	return key[:idx]
}

// dirSize sums the file sizes under root.
func dirSize(root string) (int64, error) {
	var total int64
	err := filepath.WalkDir(root, func(_ string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}
		total += info.Size()
		return nil
	})
	return total, err
}
