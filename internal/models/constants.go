package models

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// AmountStatus tracks payment for a booking.
type AmountStatus string

const (
	AmountPaid    AmountStatus = "PAID"
	AmountUnpaid  AmountStatus = "UNPAID"
	AmountPartial AmountStatus = "PARTIAL"
)

var (
	BookingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingCancelled}
	AmountStatuses  = []AmountStatus{AmountPaid, AmountUnpaid, AmountPartial}
)

func ParseBookingStatus(s string) (BookingStatus, error) {
	for _, v := range BookingStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", &EnumDecodeError{Field: "booking_status", Value: s}
}

func ParseAmountStatus(s string) (AmountStatus, error) {
	for _, v := range AmountStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", &EnumDecodeError{Field: "amount_status", Value: s}
}

// BookingStatusValues returns the vocabulary as plain strings.
func BookingStatusValues() []string {
	out := make([]string, len(BookingStatuses))
	for i, v := range BookingStatuses {
		out[i] = string(v)
	}
	return out
}

// AmountStatusValues returns the vocabulary as plain strings.
func AmountStatusValues() []string {
	out := make([]string, len(AmountStatuses))
	for i, v := range AmountStatuses {
		out[i] = string(v)
	}
	return out
}
