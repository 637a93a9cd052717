package domain

import (
	"context"
	"time"

	"showroom/internal/models"
)

// Worksheet is a handle to one worksheet of a spreadsheet. Rows and columns are 1-based.
type Worksheet interface {
	RowValues(ctx context.Context, row int) ([]string, error)
	ColValues(ctx context.Context, col int) ([]string, error)
	AllValues(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateRow(ctx context.Context, row int, values []string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
}

type BookingRepository interface {
	Create(ctx context.Context, record *models.BookingRecord) (string, error)
	ReadAll(ctx context.Context, includeDeleted bool) ([]models.BookingRecord, error)
	ReadOne(ctx context.Context, rowNumber int) (models.BookingRecord, error)
	GetByID(ctx context.Context, id string) (*models.Booking, bool, error)
	FindRowNumberByID(ctx context.Context, id string) (int, error)
	UpdateByID(ctx context.Context, record *models.BookingRecord) error
	DeleteByID(ctx context.Context, id string) error
}

type BookingService interface {
	List(ctx context.Context, includeDeleted bool) ([]models.BookingRecord, error)
	Get(ctx context.Context, id string) (*models.Booking, bool, error)
	Create(ctx context.Context, record *models.BookingRecord) (string, error)
	Update(ctx context.Context, record *models.BookingRecord) error
	Delete(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// QuotaRepository counts calls per client in fixed windows.
type QuotaRepository interface {
	Allow(ctx context.Context, client string, limit int, window time.Duration) (bool, error)
}

// AuditLog keeps a bounded feed of raw booking events.
type AuditLog interface {
	Append(ctx context.Context, entry []byte) error
	Recent(ctx context.Context, n int64) ([][]byte, error)
}

// StateStore is the shared per-process state kept outside the spreadsheet.
type StateStore interface {
	QuotaRepository
	AuditLog
}
