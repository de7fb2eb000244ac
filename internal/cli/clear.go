package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// newClearCmd creates the clear command. By default it deletes every
// ephemeral record; --historical wipes the historical subtree instead and
// recreates its partition skeleton.
func newClearCmd() *cobra.Command {
	var clearHistorical bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete cached records from disk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, client, err := loadEnvironment(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if clearHistorical {
				if err := client.Historical().Clear(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("Historical records cleared")
				return nil
			}

			backend := client.Backend()
			keys, err := backend.Keys(cmd.Context(), "")
			if err != nil {
				return err
			}
			removed := 0
			for _, key := range keys {
				if strings.Contains(key, "/") {
					continue
				}
				if err := backend.Delete(cmd.Context(), key); err != nil {
					logger.Warn().Err(err).Str("key", key).Msg("could not delete record")
					continue
				}
				removed++
			}
			cmd.Printf("Removed %d ephemeral records\n", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearHistorical, "historical", false, "wipe the historical subtree instead of ephemeral records")

	return cmd
}
