package models

import (
	"fmt"
	"strings"
)

// BookingRecord is the raw, string-typed shape of one worksheet row.
type BookingRecord struct {
	ID            string `json:"id" validate:"omitempty"`
	BookingDate   string `json:"booking_date" validate:"omitempty,datetime=2006-01-02"`
	ProductCode   string `json:"product_code" validate:"required"`
	ProductName   string `json:"product_name" validate:"required"`
	BookingStatus string `json:"booking_status" validate:"required,booking_status"`
	StartDate     string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Amount        string `json:"amount" validate:"omitempty,numeric"`
	AmountStatus  string `json:"amount_status" validate:"omitempty,amount_status"`
	IsActive      string `json:"is_active" validate:"omitempty,oneof=true false TRUE FALSE True False"`
}

// Booking is a BookingRecord with its enum and flag columns decoded.
type Booking struct {
	ID            string        `json:"id"`
	BookingDate   string        `json:"booking_date"`
	ProductCode   string        `json:"product_code"`
	ProductName   string        `json:"product_name"`
	BookingStatus BookingStatus `json:"booking_status"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	Amount        string        `json:"amount"`
	AmountStatus  AmountStatus  `json:"amount_status"`
	IsActive      bool          `json:"is_active"`
}

const (
	IDPrefix   = "VS"
	DateLayout = "2006-01-02"

	ActiveTrue  = "true"
	ActiveFalse = "false"
)

// Header is the canonical column order of the bookings worksheet.
var Header = []string{
	"id",
	"booking_date",
	"product_code",
	"product_name",
	"booking_status",
	"start_date",
	"end_date",
	"amount",
	"amount_status",
	"is_active",
}

// ColumnIndex returns the 1-based column of a header name, or 0 if unknown.
func ColumnIndex(name string) int {
	for i, h := range Header {
		if h == name {
			return i + 1
		}
	}
	return 0
}

// Row serializes the record in canonical column order.
func (r BookingRecord) Row() []string {
	return []string{
		r.ID,
		r.BookingDate,
		r.ProductCode,
		r.ProductName,
		r.BookingStatus,
		r.StartDate,
		r.EndDate,
		r.Amount,
		r.AmountStatus,
		r.IsActive,
	}
}

// RecordFromRow maps a row positionally. Short rows are padded with empty cells,
// extra trailing cells are ignored.
func RecordFromRow(row []string) BookingRecord {
	cells := make([]string, len(Header))
	copy(cells, row)
	return BookingRecord{
		ID:            cells[0],
		BookingDate:   cells[1],
		ProductCode:   cells[2],
		ProductName:   cells[3],
		BookingStatus: cells[4],
		StartDate:     cells[5],
		EndDate:       cells[6],
		Amount:        cells[7],
		AmountStatus:  cells[8],
		IsActive:      cells[9],
	}
}

// Active reports whether the record is visible under default reads.
func (r BookingRecord) Active() bool {
	return strings.EqualFold(r.IsActive, ActiveTrue)
}

// Decode converts the string columns into their typed form.
func (r BookingRecord) Decode() (*Booking, error) {
	status, err := ParseBookingStatus(r.BookingStatus)
	if err != nil {
		return nil, err
	}
	amountStatus, err := ParseAmountStatus(r.AmountStatus)
	if err != nil {
		return nil, err
	}

	return &Booking{
		ID:            r.ID,
		BookingDate:   r.BookingDate,
		ProductCode:   r.ProductCode,
		ProductName:   r.ProductName,
		BookingStatus: status,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Amount:        r.Amount,
		AmountStatus:  amountStatus,
		IsActive:      r.Active(),
	}, nil
}

// Record converts a decoded booking back into its row shape.
func (b Booking) Record() BookingRecord {
	return BookingRecord{
		ID:            b.ID,
		BookingDate:   b.BookingDate,
		ProductCode:   b.ProductCode,
		ProductName:   b.ProductName,
		BookingStatus: string(b.BookingStatus),
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		Amount:        b.Amount,
		AmountStatus:  string(b.AmountStatus),
		IsActive:      fmt.Sprintf("%t", b.IsActive),
	}
}
