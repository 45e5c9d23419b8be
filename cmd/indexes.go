// file: cmd/indexes.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create the unique WhatsApp number index and lookup indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		if err := prepareStore(ctx, a.store); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexesCmd)
}
