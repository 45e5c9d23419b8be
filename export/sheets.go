// file: export/sheets.go
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"athmageeth-portal/logger"
	"athmageeth-portal/models"
)

// SheetsPusher rewrites one tab of a spreadsheet with the full export.
type SheetsPusher struct {
	srv           *sheetsv4.Service
	spreadsheetID string
	tab           string
}

// NewSheetsPusher authenticates with a service account file when one is
// given; extra options are passed to the Sheets client.
func NewSheetsPusher(ctx context.Context, credentialsFile, spreadsheetID, tab string, opts ...option.ClientOption) (*SheetsPusher, error) {
	if spreadsheetID == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("service account json: %w", err)
		}
		opts = append(opts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheetsv4.SpreadsheetsScope),
		)
	}
	srv, err := sheetsv4.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	if tab == "" {
		tab = "Registrations"
	}
	return &SheetsPusher{srv: srv, spreadsheetID: spreadsheetID, tab: tab}, nil
}

// Push clears the tab and writes the header plus every registration. It
// returns the number of registration rows written.
func (p *SheetsPusher) Push(ctx context.Context, regs []models.Registration, loc *time.Location) (int, error) {
	if _, err := p.srv.Spreadsheets.Values.Clear(p.spreadsheetID, p.tab+"!A:Z", &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do(); err != nil {
		return 0, fmt.Errorf("clearing sheet %s: %w", p.tab, err)
	}

	values := make([][]interface{}, 0, len(regs)+1)
	values = append(values, toCells(Header))
	for _, row := range Rows(regs, loc) {
		values = append(values, toCells(row))
	}

	vr := &sheetsv4.ValueRange{Values: values}
	if _, err := p.srv.Spreadsheets.Values.Update(p.spreadsheetID, p.tab+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do(); err != nil {
		return 0, fmt.Errorf("writing sheet %s: %w", p.tab, err)
	}

	logger.Info.Printf("[SheetsPusher.Push] wrote %d registrations to %s", len(regs), p.tab)
	return len(regs), nil
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}
