package tools

import (
	"showroom/internal/models"

	"google.golang.org/genai"
)

const (
	GetAllBookings    = "get_all_bookings"
	GetBookingByID    = "get_booking_by_id"
	CreateBooking     = "create_booking"
	UpdateBooking     = "update_booking"
	DeleteBookingByID = "delete_booking_by_id"
)

const (
	PermissionRead  = "read:bookings"
	PermissionWrite = "write:bookings"
)

func idSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id": {Type: genai.TypeString, Description: "Booking id, e.g. VS001."},
		},
		Required: []string{"id"},
	}
}

// bookingSchema describes a BookingRecord. withID makes id a required property.
func bookingSchema(withID bool) *genai.Schema {
	props := map[string]*genai.Schema{
		"booking_date":   {Type: genai.TypeString, Description: "Booking date, YYYY-MM-DD. Defaults to today."},
		"product_code":   {Type: genai.TypeString, Description: "Showroom product code."},
		"product_name":   {Type: genai.TypeString, Description: "Product display name."},
		"booking_status": {Type: genai.TypeString, Enum: models.BookingStatusValues()},
		"start_date":     {Type: genai.TypeString, Description: "Rental start, YYYY-MM-DD."},
		"end_date":       {Type: genai.TypeString, Description: "Rental end, YYYY-MM-DD."},
		"amount":         {Type: genai.TypeString, Description: "Amount as a decimal string."},
		"amount_status":  {Type: genai.TypeString, Enum: models.AmountStatusValues(), Description: "Defaults to UNPAID."},
		"is_active":      {Type: genai.TypeString, Enum: []string{models.ActiveTrue, models.ActiveFalse}},
	}
	required := []string{"product_code", "product_name", "booking_status"}

	if withID {
		props["id"] = &genai.Schema{Type: genai.TypeString, Description: "Id of the booking to overwrite."}
		required = append([]string{"id"}, required...)
	}

	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   required,
	}
}
