package service

import (
	"context"

	"showroom/internal/domain"
	"showroom/internal/events"
	"showroom/internal/logging"
	"showroom/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	repo     domain.BookingRepository
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewBookingService(repo domain.BookingRepository, eventBus domain.EventPublisher, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		repo:     repo,
		eventBus: eventBus,
		logger:   logging.Component(logger, "booking_service"),
	}
}

func (s *BookingService) List(ctx context.Context, includeDeleted bool) ([]models.BookingRecord, error) {
	return s.repo.ReadAll(ctx, includeDeleted)
}

// Get reports found=false for an unknown id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, bool, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BookingService) Create(ctx context.Context, record *models.BookingRecord) (string, error) {
	id, err := s.repo.Create(ctx, record)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("booking_id", id).Str("product_code", record.ProductCode).Msg("Booking created")
	s.publishEvent(events.EventBookingCreated, payloadFromRecord(record))
	return id, nil
}

func (s *BookingService) Update(ctx context.Context, record *models.BookingRecord) error {
	if err := s.repo.UpdateByID(ctx, record); err != nil {
		return err
	}

	s.logger.Info().Str("booking_id", record.ID).Str("status", record.BookingStatus).Msg("Booking updated")
	s.publishEvent(events.EventBookingUpdated, payloadFromRecord(record))
	return nil
}

func (s *BookingService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("booking_id", id).Msg("Booking deleted")
	s.publishEvent(events.EventBookingDeleted, events.BookingEventPayload{BookingID: id, IsActive: models.ActiveFalse})
	return nil
}

func (s *BookingService) publishEvent(eventType string, payload events.BookingEventPayload) {
	if s.eventBus == nil {
		return
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", payload.BookingID).Msg("publish event error")
	}
}

func payloadFromRecord(r *models.BookingRecord) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:     r.ID,
		BookingDate:   r.BookingDate,
		ProductCode:   r.ProductCode,
		ProductName:   r.ProductName,
		BookingStatus: r.BookingStatus,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Amount:        r.Amount,
		AmountStatus:  r.AmountStatus,
		IsActive:      r.IsActive,
	}
}
