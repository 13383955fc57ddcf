package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/regisleandro/alfredo-ai/internal/domain"
)

// summaryThreshold is the data-row count above which a CSV is reduced
// to a bounded summary instead of full content.
const summaryThreshold = 20

// extractCSV renders CSV content as text. Files with more than
// summaryThreshold data rows are summarized (counts, column names,
// first and last five rows) to cap payload size. Parse failures are
// returned as a descriptive string.
func extractCSV(payload []byte) string {
	reader := csv.NewReader(bytes.NewReader(payload))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Sprintf("Error processing CSV: %s", err)
	}
	if len(rows) == 0 {
		return "Empty CSV file"
	}

	header := rows[0]
	data := rows[1:]
	if len(data) <= summaryThreshold {
		return renderRows(header, data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "CSV contains %d rows and %d columns.\n", len(data), len(header))
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(header, ", "))
	fmt.Fprintf(&b, "First 5 rows:\n%s\n", renderRows(header, data[:5]))
	fmt.Fprintf(&b, "Last 5 rows:\n%s", renderRows(header, data[len(data)-5:]))
	return b.String()
}

func renderRows(header []string, data [][]string) string {
	table := &domain.Table{Columns: header, Rows: data}
	return table.Render()
}
