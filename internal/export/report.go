package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"tipjar/internal/core"
	"tipjar/web"
)

// reportLimit caps the report table at the most recent records; the
// stored history shares the same bound.
const reportLimit = 50

// ReportStats is the summary row rendered above the transaction table.
type ReportStats struct {
	Total      decimal.Decimal
	Count      int
	Average    decimal.Decimal
	Supporters int
}

type reportData struct {
	GeneratedAt string
	Stats       ReportStats
	Records     []reportRow
}

type reportRow struct {
	Date   string
	Amount string
	From   string
	Hash   string
	Status string
}

var reportTmpl = template.Must(template.ParseFS(web.TemplatesFS, "templates/report.html"))

// WriteReport renders the printable report document. Unlike the CSV
// export it succeeds on an empty history and renders an empty table;
// turning the document into a PDF is the browser's print dialog's job.
func WriteReport(w io.Writer, records []core.Record, stats ReportStats, now time.Time) error {
	if len(records) > reportLimit {
		records = records[:reportLimit]
	}

	rows := make([]reportRow, len(records))
	for i, r := range records {
		rows[i] = reportRow{
			Date:   r.Timestamp.Format(displayTimeLayout),
			Amount: r.Amount.String(),
			From:   shorten(r.From),
			Hash:   shorten(r.Hash),
			Status: string(r.Status),
		}
	}

	data := reportData{
		GeneratedAt: now.Format("January 2, 2006"),
		Stats:       stats,
		Records:     rows,
	}
	if err := reportTmpl.ExecuteTemplate(w, "report.html", data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// shorten abbreviates long addresses and hashes for the report table.
func shorten(s string) string {
	if len(s) <= 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-6:]
}
