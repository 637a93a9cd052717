package export

import (
	"fmt"
	"io"

	"showroom/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Bookings"

// ContentType is the MIME type of an .xlsx workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BookingsWorkbook lays the records out under the canonical header.
// Soft-deleted rows are greyed out and cancelled bookings are shaded red.
func BookingsWorkbook(records []models.BookingRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(models.Header))
	for i, h := range models.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	deletedStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "#808080", Italic: true},
	})
	if err != nil {
		f.Close()
		return nil, err
	}
	cancelledStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFC7CE"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	lastCol, _ := excelize.ColumnNumberToName(len(models.Header))
	_ = f.SetCellStyle(SheetName, "A1", lastCol+"1", headerStyle)

	for i, rec := range records {
		rowNum := i + 2
		cells := rec.Row()
		row := make([]interface{}, len(cells))
		for j, c := range cells {
			row[j] = c
		}

		start, _ := excelize.CoordinatesToCellName(1, rowNum)
		end, _ := excelize.CoordinatesToCellName(len(cells), rowNum)
		if err := f.SetSheetRow(SheetName, start, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", rowNum, err)
		}

		switch {
		case !rec.Active():
			_ = f.SetCellStyle(SheetName, start, end, deletedStyle)
		case rec.BookingStatus == string(models.BookingCancelled):
			_ = f.SetCellStyle(SheetName, start, end, cancelledStyle)
		}
	}

	_ = f.SetColWidth(SheetName, "A", lastCol, 16)
	_ = f.SetColWidth(SheetName, "D", "D", 28)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return f, nil
}

// WriteBookings streams the workbook to w.
func WriteBookings(w io.Writer, records []models.BookingRecord) error {
	f, err := BookingsWorkbook(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
