package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"showroom/internal/domain"
	"showroom/internal/logging"
	"showroom/internal/metrics"
	"showroom/internal/models"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

var ErrUnknownTool = errors.New("unknown tool")

type handlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is one callable operation of the registry.
type Tool struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Permission  string                     `json:"permission"`
	Declaration *genai.FunctionDeclaration `json:"declaration"`

	handler handlerFunc
}

// Registry exposes the booking service as named tools.
type Registry struct {
	tools  map[string]*Tool
	order  []string
	svc    domain.BookingService
	logger *zerolog.Logger
}

func NewRegistry(svc domain.BookingService, logger *zerolog.Logger) *Registry {
	r := &Registry{
		tools:  make(map[string]*Tool),
		svc:    svc,
		logger: logging.Component(logger, "tools"),
	}

	r.register(GetAllBookings, "Get all the bookings", PermissionRead, nil, r.getAllBookings)
	r.register(GetBookingByID, "Get one booking by its id", PermissionRead, idSchema(), r.getBookingByID)
	r.register(CreateBooking, "Create a booking and return its new id", PermissionWrite, bookingSchema(false), r.createBooking)
	r.register(UpdateBooking, "Overwrite every field of an existing booking", PermissionWrite, bookingSchema(true), r.updateBooking)
	r.register(DeleteBookingByID, "Soft-delete a booking by its id", PermissionWrite, idSchema(), r.deleteBookingByID)
	return r
}

func (r *Registry) register(name, description, permission string, params *genai.Schema, h handlerFunc) {
	r.tools[name] = &Tool{
		Name:        name,
		Description: description,
		Permission:  permission,
		Declaration: &genai.FunctionDeclaration{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
		handler: h,
	}
	r.order = append(r.order, name)
}

// Tools returns the catalog in registration order.
func (r *Registry) Tools() []*Tool {
	out := make([]*Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Lookup returns a tool by name.
func (r *Registry) Lookup(name string) (*Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// FunctionDeclarations returns the catalog as a Gemini tool definition.
func (r *Registry) FunctionDeclarations() *genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.order))
	for _, t := range r.Tools() {
		decls = append(decls, t.Declaration)
	}
	return &genai.Tool{FunctionDeclarations: decls}
}

// Call invokes a tool with JSON arguments. An empty args value means no arguments.
func (r *Registry) Call(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	start := time.Now()
	result, err := t.handler(ctx, args)
	metrics.IncToolCall(name, err)

	evt := r.logger.Info()
	if err != nil {
		evt = r.logger.Warn().Err(err)
	}
	evt.Str("tool", name).Dur("duration", time.Since(start)).Msg("Tool call")

	return result, err
}

func (r *Registry) getAllBookings(ctx context.Context, _ json.RawMessage) (any, error) {
	records, err := r.svc.List(ctx, false)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.BookingRecord{}
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

type idArgs struct {
	ID string `json:"id"`
}

func (r *Registry) getBookingByID(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.ID == "" {
		return nil, &models.ValidationError{Field: "id", Message: "is required"}
	}

	booking, found, err := r.svc.Get(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &models.NotFoundError{ID: args.ID}
	}
	return booking, nil
}

func (r *Registry) createBooking(ctx context.Context, raw json.RawMessage) (any, error) {
	var rec models.BookingRecord
	if err := decodeArgs(raw, &rec); err != nil {
		return nil, err
	}
	id, err := r.svc.Create(ctx, &rec)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func (r *Registry) updateBooking(ctx context.Context, raw json.RawMessage) (any, error) {
	var rec models.BookingRecord
	if err := decodeArgs(raw, &rec); err != nil {
		return nil, err
	}
	return nil, r.svc.Update(ctx, &rec)
}

func (r *Registry) deleteBookingByID(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.ID == "" {
		return nil, &models.ValidationError{Field: "id", Message: "is required"}
	}
	return nil, r.svc.Delete(ctx, args.ID)
}

// decodeArgs rejects unknown fields and trailing data. Empty input leaves v untouched.
func decodeArgs(raw json.RawMessage, v any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Field: "arguments", Message: err.Error()}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return &models.ValidationError{Field: "arguments", Message: "unexpected data after JSON object"}
	}
	return nil
}
