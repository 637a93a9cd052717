package api

import (
	"context"
	"fmt"
	"sync"

	"showroom/internal/config"
	"showroom/internal/models"
)

// fakeBookings is an in-memory BookingService.
type fakeBookings struct {
	mu      sync.Mutex
	records []models.BookingRecord
	err     error
}

func (f *fakeBookings) List(_ context.Context, includeDeleted bool) ([]models.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.BookingRecord
	for _, r := range f.records {
		if includeDeleted || r.Active() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBookings) Get(_ context.Context, id string) (*models.Booking, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	for _, r := range f.records {
		if r.ID == id {
			b, err := r.Decode()
			if err != nil {
				return nil, false, err
			}
			return b, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeBookings) Create(_ context.Context, r *models.BookingRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	if r.ProductCode == "" {
		return "", &models.ValidationError{Field: "product_code", Message: "is required"}
	}
	r.ID = fmt.Sprintf("VS%03d", len(f.records)+1)
	if r.AmountStatus == "" {
		r.AmountStatus = string(models.AmountUnpaid)
	}
	r.IsActive = models.ActiveTrue
	f.records = append(f.records, *r)
	return r.ID, nil
}

func (f *fakeBookings) Update(_ context.Context, r *models.BookingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == r.ID {
			f.records[i] = *r
			return nil
		}
	}
	return &models.NotFoundError{ID: r.ID}
}

func (f *fakeBookings) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.records {
		if f.records[i].ID == id {
			f.records[i].IsActive = models.ActiveFalse
			return nil
		}
	}
	return &models.NotFoundError{ID: id}
}

func seededBookings() *fakeBookings {
	return &fakeBookings{records: []models.BookingRecord{
		{ID: "VS001", BookingDate: "2025-07-01", ProductCode: "P1", ProductName: "Lehnga", BookingStatus: "CONFIRMED", AmountStatus: "PAID", IsActive: "true"},
		{ID: "VS002", BookingDate: "2025-07-02", ProductCode: "P2", ProductName: "Sherwani", BookingStatus: "PENDING", AmountStatus: "UNPAID", IsActive: "false"},
		{ID: "VS003", BookingDate: "2025-07-03", ProductCode: "P3", ProductName: "Saree", BookingStatus: "ON_HOLD", AmountStatus: "UNPAID", IsActive: "true"},
	}}
}

func testAPIConfig() config.APIConfig {
	return config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: "reader-key", Extra: "reader-extra", Name: "reader", Permissions: []string{"read:bookings"}},
				{Key: "writer-key", Extra: "writer-extra", Name: "writer", Permissions: []string{"read:bookings", "write:bookings"}},
				{Key: "admin-key", Extra: "admin-extra", Name: "admin"},
			},
		},
		RateLimit: config.APIRateLimitConfig{RPS: 100, Burst: 200},
	}
}
