package google

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"showroom/internal/metrics"

	"google.golang.org/api/sheets/v4"
)

var plainTitle = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Worksheet reads and writes one worksheet. Values are written RAW so the
// sheet never reinterprets dates or numbers.
type Worksheet struct {
	service       *sheets.Service
	spreadsheetID string
	title         string
	retry         RetryPolicy
}

func (w *Worksheet) Title() string         { return w.title }
func (w *Worksheet) SpreadsheetID() string { return w.spreadsheetID }

func (w *Worksheet) RowValues(ctx context.Context, row int) ([]string, error) {
	rows, err := w.get(ctx, "row", fmt.Sprintf("%d:%d", row, row), "ROWS")
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (w *Worksheet) ColValues(ctx context.Context, col int) ([]string, error) {
	letter := ColumnName(col)
	cols, err := w.get(ctx, "col", letter+":"+letter, "COLUMNS")
	if err != nil || len(cols) == 0 {
		return nil, err
	}
	return cols[0], nil
}

func (w *Worksheet) AllValues(ctx context.Context) ([][]string, error) {
	return w.get(ctx, "all", "", "ROWS")
}

func (w *Worksheet) AppendRow(ctx context.Context, values []string) error {
	_, err := w.service.Spreadsheets.Values.Append(w.spreadsheetID, w.a1("A1"), valueRange(values)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	metrics.IncSheetCall("append", err)
	if err != nil {
		return fmt.Errorf("append row to %s: %w", w.title, err)
	}
	return nil
}

func (w *Worksheet) UpdateRow(ctx context.Context, row int, values []string) error {
	rng := fmt.Sprintf("A%d:%s%d", row, ColumnName(len(values)), row)
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, w.a1(rng), valueRange(values)).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	metrics.IncSheetCall("update_row", err)
	if err != nil {
		return fmt.Errorf("update row %d of %s: %w", row, w.title, err)
	}
	return nil
}

func (w *Worksheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	cell := fmt.Sprintf("%s%d", ColumnName(col), row)
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, w.a1(cell), valueRange([]string{value})).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	metrics.IncSheetCall("update_cell", err)
	if err != nil {
		return fmt.Errorf("update cell %s of %s: %w", cell, w.title, err)
	}
	return nil
}

func (w *Worksheet) get(ctx context.Context, op, rng, dimension string) ([][]string, error) {
	var resp *sheets.ValueRange
	err := w.retry.Do(ctx, func() error {
		var err error
		resp, err = w.service.Spreadsheets.Values.Get(w.spreadsheetID, w.a1(rng)).
			MajorDimension(dimension).
			Context(ctx).
			Do()
		metrics.IncSheetCall("get_"+op, err)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", w.a1(rng), err)
	}

	out := make([][]string, 0, len(resp.Values))
	for _, line := range resp.Values {
		cells := make([]string, len(line))
		for i, v := range line {
			cells[i] = cellString(v)
		}
		out = append(out, cells)
	}
	return out, nil
}

// a1 prefixes a range with the worksheet title. An empty range addresses the whole sheet.
func (w *Worksheet) a1(rng string) string {
	title := w.title
	if !plainTitle.MatchString(title) {
		title = "'" + strings.ReplaceAll(title, "'", "''") + "'"
	}
	if rng == "" {
		return title
	}
	return title + "!" + rng
}

// ColumnName converts a 1-based column index to its letter form (1 -> A, 27 -> AA).
func ColumnName(col int) string {
	if col < 1 {
		col = 1
	}
	var name []byte
	for col > 0 {
		col--
		name = append([]byte{byte('A' + col%26)}, name...)
		col /= 26
	}
	return string(name)
}

func valueRange(values []string) *sheets.ValueRange {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return &sheets.ValueRange{Values: [][]interface{}{row}}
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strings.ToUpper(strconv.FormatBool(val))
	default:
		return fmt.Sprint(val)
	}
}
