package cli

import (
	"github.com/spf13/cobra"
)

// newSweepCmd creates the sweep command, running one synchronous sweep pass
// over the cache root.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete expired and unparseable ephemeral records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			result := client.Cache().Sweep(cmd.Context())
			cmd.Printf("Scanned %d records, removed %d\n", result.DiskScanned, result.DiskRemoved)
			return nil
		},
	}
}
