// Package render formats cell values and rectangles for display and
// for CSV export. Left on the standard library deliberately: no
// repository in the retrieval pack wires in a dedicated float or CSV
// library for a use this small (see DESIGN.md).
package render

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/wiredcell/ssheet/internal/calc"
)

// ErrorSentinel is the fixed token written for an error-valued cell,
// distinct from any legal numeric or text rendering.
const ErrorSentinel = "#ERR"

// Value renders a single cell value the way a display or CSV cell
// would show it: empty string for Empty, shortest round-trippable
// decimal for Num, raw text for Text, and ErrorSentinel for Err.
func Value(v calc.Value) string {
	switch v.Kind {
	case calc.KindEmpty:
		return ""
	case calc.KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case calc.KindText:
		return v.Text
	case calc.KindError:
		return ErrorSentinel
	}
	return ""
}

// CSV writes rows (already in row-major rectangle order) to w using
// RFC 4180 quoting via encoding/csv.
func CSV(w io.Writer, rows [][]calc.Value) error {
	cw := csv.NewWriter(w)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = Value(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
