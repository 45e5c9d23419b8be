// Package export flattens registrations for spreadsheets: a CSV download and
// a push to a Google Sheet.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"athmageeth-portal/models"
)

// FilePrefix starts every export file name.
const FilePrefix = "Athmageeth_Registrations_"

// Header is the first row of every export.
var Header = []string{
	"Institution Name",
	"Place",
	"District",
	"Candidates",
	"WhatsApp Number",
	"Union Official Number",
	"Principal Name",
	"Principal Phone",
	"Receipt",
	"Payment Status",
	"Registered At",
}

const registeredAtLayout = "2006-01-02 15:04:05"

// LoadLocation resolves the timezone export timestamps are written in. An
// empty name means UTC.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading export timezone %q: %w", name, err)
	}
	return loc, nil
}

// FormatCandidates renders "Anjali (Leader), Rahul".
func FormatCandidates(candidates []models.Candidate) string {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.IsLeader {
			names = append(names, c.Name+" (Leader)")
		} else {
			names = append(names, c.Name)
		}
	}
	return strings.Join(names, ", ")
}

// Row flattens one registration in Header order.
func Row(reg models.Registration, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	return []string{
		reg.InstitutionName,
		reg.Place,
		reg.District,
		FormatCandidates(reg.Candidates),
		reg.WhatsappNumber,
		reg.UnionOfficialNumber,
		reg.PrincipalName,
		reg.PrincipalPhone,
		reg.ReceiptURL,
		string(reg.PaymentStatus),
		reg.CreatedAt.In(loc).Format(registeredAtLayout),
	}
}

// Rows flattens every registration, without the header.
func Rows(regs []models.Registration, loc *time.Location) [][]string {
	out := make([][]string, len(regs))
	for i, reg := range regs {
		out[i] = Row(reg, loc)
	}
	return out
}

// FileName is the download name for an export taken at now.
func FileName(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return FilePrefix + now.In(loc).Format("2006-01-02") + ".csv"
}

// WriteCSV writes the header and one line per registration.
func WriteCSV(w io.Writer, regs []models.Registration, loc *time.Location) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, row := range Rows(regs, loc) {
		for i, cell := range row {
			row[i] = neutralizeFormula(cell)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// neutralizeFormula keeps spreadsheet apps from evaluating user-supplied
// text as a formula.
func neutralizeFormula(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
