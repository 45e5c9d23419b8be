// file: cmd/export.go
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"athmageeth-portal/export"
	"athmageeth-portal/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every registration to CSV or Google Sheets",
	Long: `Writes all registrations, newest first, as CSV. With --out the file is
written to disk; "-" writes to stdout. With --sheets the configured
spreadsheet tab is replaced instead.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", `output file (default: dated file name, "-" for stdout)`)
	exportCmd.Flags().Bool("sheets", false, "push to the configured Google Sheets tab")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	regs, err := a.admin.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading registrations: %w", err)
	}

	if toSheets, _ := cmd.Flags().GetBool("sheets"); toSheets {
		if a.sheets == nil {
			return errors.New("google sheets export is not configured (set SHEETS_SPREADSHEET_ID)")
		}
		n, err := a.sheets.Push(ctx, regs, a.location)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pushed %d rows\n", n)
		return nil
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = export.FileName(time.Now(), a.location)
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out) // #nosec G304 -- operator supplied path
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := export.WriteCSV(w, regs, a.location); err != nil {
		return err
	}
	if out != "-" {
		logger.Info.Printf("[runExport] wrote %d registrations to %s", len(regs), out)
	}
	return nil
}
