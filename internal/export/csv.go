// Package export serializes a tip history (full or filtered) to CSV and
// to a standalone printable HTML report.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"tipjar/internal/core"
)

// ErrNoData is returned when an export is requested on an empty
// collection. Exporting nothing is a user error, not a silent no-op.
var ErrNoData = errors.New("no transactions to export")

// displayTimeLayout renders timestamps the way the history table shows
// them, not RFC3339.
const displayTimeLayout = "1/2/2006, 3:04:05 PM"

var csvHeader = []string{"Date", "Amount (XLM)", "From Address", "Transaction Hash", "Status", "Message"}

// WriteCSV emits the six-column export for the given records.
func WriteCSV(w io.Writer, records []core.Record) error {
	if len(records) == 0 {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(displayTimeLayout),
			r.Amount.String(),
			r.From,
			r.Hash,
			string(r.Status),
			r.Message,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
