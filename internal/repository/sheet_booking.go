package repository

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"time"

	"showroom/internal/domain"
	"showroom/internal/logging"
	"showroom/internal/models"

	"github.com/rs/zerolog"
)

var bookingIDPattern = regexp.MustCompile(`^` + models.IDPrefix + `(\d+)$`)

var isActiveColumn = models.ColumnIndex("is_active")

// SheetBookingRepository stores bookings as rows of one worksheet. Row 1 is
// the header; every call reads the sheet afresh.
type SheetBookingRepository struct {
	sheet     domain.Worksheet
	validator *BookingValidator
	location  *time.Location
	now       func() time.Time
	logger    *zerolog.Logger
}

// NewSheetBookingRepository binds the store to a worksheet and repairs the
// header row when it differs from models.Header.
func NewSheetBookingRepository(ctx context.Context, sheet domain.Worksheet, location *time.Location, logger *zerolog.Logger) (*SheetBookingRepository, error) {
	v, err := NewBookingValidator()
	if err != nil {
		return nil, err
	}
	if location == nil {
		location = time.Local
	}

	r := &SheetBookingRepository{
		sheet:     sheet,
		validator: v,
		location:  location,
		now:       time.Now,
		logger:    logging.Component(logger, "booking_store"),
	}
	if err := r.ensureHeader(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SheetBookingRepository) ensureHeader(ctx context.Context) error {
	current, err := r.sheet.RowValues(ctx, 1)
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if slices.Equal(current, models.Header) {
		return nil
	}

	r.logger.Warn().Strs("found", current).Msg("Worksheet header drifted, rewriting")
	if err := r.sheet.UpdateRow(ctx, 1, models.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Create assigns an id and booking date when missing, validates the record,
// fills defaults and appends it. A caller-supplied id must not be stored yet.
// The record is updated in place only when the row is written.
func (r *SheetBookingRepository) Create(ctx context.Context, record *models.BookingRecord) (string, error) {
	ids, err := r.sheet.ColValues(ctx, 1)
	if err != nil {
		return "", fmt.Errorf("read id column: %w", err)
	}

	candidate := *record
	if candidate.ID == "" {
		candidate.ID = nextID(ids)
	} else if slices.Contains(dataIDs(ids), candidate.ID) {
		return "", &models.ValidationError{Field: "id", Message: "already exists"}
	}
	if candidate.BookingDate == "" {
		candidate.BookingDate = r.now().In(r.location).Format(models.DateLayout)
	}

	if err := r.validator.Validate(&candidate); err != nil {
		return "", err
	}
	applyDefaults(&candidate)

	if err := r.sheet.AppendRow(ctx, candidate.Row()); err != nil {
		return "", fmt.Errorf("append booking %s: %w", candidate.ID, err)
	}

	*record = candidate
	r.logger.Debug().Str("id", record.ID).Msg("Booking row appended")
	return record.ID, nil
}

// applyDefaults fills the payment and visibility columns left blank.
func applyDefaults(record *models.BookingRecord) {
	if record.AmountStatus == "" {
		record.AmountStatus = string(models.AmountUnpaid)
	}
	if record.IsActive == "" {
		record.IsActive = models.ActiveTrue
	}
}

// ReadAll returns data rows in sheet order, skipping soft-deleted ones unless
// includeDeleted is set.
func (r *SheetBookingRepository) ReadAll(ctx context.Context, includeDeleted bool) ([]models.BookingRecord, error) {
	rows, err := r.sheet.AllValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("read bookings: %w", err)
	}

	records := make([]models.BookingRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 {
			continue
		}
		rec := models.RecordFromRow(row)
		if includeDeleted || rec.Active() {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ReadOne maps a single row by its 1-based position. Row 1 is the header.
func (r *SheetBookingRepository) ReadOne(ctx context.Context, rowNumber int) (models.BookingRecord, error) {
	if rowNumber < 1 {
		return models.BookingRecord{}, &models.ValidationError{Field: "row_number", Message: "must be at least 1"}
	}
	row, err := r.sheet.RowValues(ctx, rowNumber)
	if err != nil {
		return models.BookingRecord{}, fmt.Errorf("read row %d: %w", rowNumber, err)
	}
	return models.RecordFromRow(row), nil
}

// GetByID decodes the first data row with a matching id. Soft-deleted rows are
// returned too, with IsActive false. found is false when no row matches.
func (r *SheetBookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, bool, error) {
	records, err := r.ReadAll(ctx, true)
	if err != nil {
		return nil, false, err
	}

	for _, rec := range records {
		if rec.ID != id {
			continue
		}
		booking, err := rec.Decode()
		if err != nil {
			return nil, false, fmt.Errorf("decode booking %s: %w", id, err)
		}
		return booking, true, nil
	}
	return nil, false, nil
}

// FindRowNumberByID scans the id column below the header.
func (r *SheetBookingRepository) FindRowNumberByID(ctx context.Context, id string) (int, error) {
	ids, err := r.sheet.ColValues(ctx, 1)
	if err != nil {
		return 0, fmt.Errorf("read id column: %w", err)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i] == id {
			return i + 1, nil
		}
	}
	return 0, &models.NotFoundError{ID: id}
}

// UpdateByID overwrites the whole row of record.ID with a single range write.
// Blank amount_status and is_active get the same defaults as Create.
func (r *SheetBookingRepository) UpdateByID(ctx context.Context, record *models.BookingRecord) error {
	if record.ID == "" {
		return &models.ValidationError{Field: "id", Message: "is required"}
	}
	applyDefaults(record)
	if err := r.validator.Validate(record); err != nil {
		return err
	}

	rowNumber, err := r.FindRowNumberByID(ctx, record.ID)
	if err != nil {
		return err
	}

	if err := r.sheet.UpdateRow(ctx, rowNumber, record.Row()); err != nil {
		return fmt.Errorf("update booking %s: %w", record.ID, err)
	}

	r.logger.Debug().Str("id", record.ID).Int("row", rowNumber).Msg("Booking row updated")
	return nil
}

// DeleteByID soft-deletes a booking by writing "false" to its is_active cell.
func (r *SheetBookingRepository) DeleteByID(ctx context.Context, id string) error {
	rowNumber, err := r.FindRowNumberByID(ctx, id)
	if err != nil {
		return err
	}

	if err := r.sheet.UpdateCell(ctx, rowNumber, isActiveColumn, models.ActiveFalse); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}

	r.logger.Debug().Str("id", id).Int("row", rowNumber).Msg("Booking soft-deleted")
	return nil
}

// dataIDs drops the header cell from an id column.
func dataIDs(col []string) []string {
	if len(col) == 0 {
		return nil
	}
	return col[1:]
}

// nextID follows the highest VS<n> id in the column. Other ids are ignored.
func nextID(col []string) string {
	maxNum := 0
	for _, id := range dataIDs(col) {
		m := bookingIDPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > maxNum {
			maxNum = n
		}
	}
	return fmt.Sprintf("%s%03d", models.IDPrefix, maxNum+1)
}
