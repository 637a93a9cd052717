package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"showroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) List(ctx context.Context, includeDeleted bool) ([]models.BookingRecord, error) {
	args := m.Called(ctx, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BookingRecord), args.Error(1)
}
func (m *mockService) Get(ctx context.Context, id string) (*models.Booking, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Booking), args.Bool(1), args.Error(2)
}
func (m *mockService) Create(ctx context.Context, r *models.BookingRecord) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}
func (m *mockService) Update(ctx context.Context, r *models.BookingRecord) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCatalog(t *testing.T) {
	reg := NewRegistry(new(mockService), nil)

	var names []string
	for _, tool := range reg.Tools() {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description)
		assert.Equal(t, tool.Name, tool.Declaration.Name)
	}
	assert.Equal(t, []string{GetAllBookings, GetBookingByID, CreateBooking, UpdateBooking, DeleteBookingByID}, names)

	create, ok := reg.Lookup(CreateBooking)
	require.True(t, ok)
	assert.Equal(t, PermissionWrite, create.Permission)
	assert.Equal(t, []string{"product_code", "product_name", "booking_status"}, create.Declaration.Parameters.Required)
	assert.Equal(t, genai.TypeObject, create.Declaration.Parameters.Type)
	assert.Equal(t, []string{"PENDING", "CONFIRMED", "CANCELLED"}, create.Declaration.Parameters.Properties["booking_status"].Enum)

	update, _ := reg.Lookup(UpdateBooking)
	assert.Contains(t, update.Declaration.Parameters.Required, "id")

	list, _ := reg.Lookup(GetAllBookings)
	assert.Equal(t, PermissionRead, list.Permission)
	assert.Nil(t, list.Declaration.Parameters)

	assert.Len(t, reg.FunctionDeclarations().FunctionDeclarations, 5)
}

func TestUnknownTool(t *testing.T) {
	reg := NewRegistry(new(mockService), nil)
	_, err := reg.Call(context.Background(), "drop_table", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestGetAllBookingsPrettyJSON(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	ctx := context.Background()

	svc.On("List", ctx, false).Return([]models.BookingRecord{{ID: "VS001", ProductCode: "P1"}}, nil).Once()

	out, err := reg.Call(ctx, GetAllBookings, nil)
	require.NoError(t, err)
	text, ok := out.(string)
	require.True(t, ok)
	assert.Contains(t, text, "\n  {\n    \"id\": \"VS001\",")

	var decoded []models.BookingRecord
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Equal(t, "P1", decoded[0].ProductCode)
}

func TestGetAllBookingsEmpty(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	svc.On("List", mock.Anything, false).Return(nil, nil).Once()

	out, err := reg.Call(context.Background(), GetAllBookings, json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestGetBookingByID(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	ctx := context.Background()

	booking := &models.Booking{ID: "VS001", BookingStatus: models.BookingPending}
	svc.On("Get", ctx, "VS001").Return(booking, true, nil).Once()
	svc.On("Get", ctx, "VS404").Return(nil, false, nil).Once()

	out, err := reg.Call(ctx, GetBookingByID, json.RawMessage(`{"id":"VS001"}`))
	require.NoError(t, err)
	assert.Equal(t, booking, out)

	_, err = reg.Call(ctx, GetBookingByID, json.RawMessage(`{"id":"VS404"}`))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = reg.Call(ctx, GetBookingByID, json.RawMessage(`{}`))
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestCreateBooking(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	ctx := context.Background()

	svc.On("Create", ctx, &models.BookingRecord{
		ProductCode: "P123", ProductName: "Lehnga", BookingStatus: "CONFIRMED", Amount: "500",
	}).Return("VS007", nil).Once()

	out, err := reg.Call(ctx, CreateBooking, json.RawMessage(
		`{"product_code":"P123","product_name":"Lehnga","booking_status":"CONFIRMED","amount":"500"}`))
	require.NoError(t, err)
	assert.Equal(t, "VS007", out)
	svc.AssertExpectations(t)
}

func TestCreateBookingBadArguments(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	ctx := context.Background()

	for _, raw := range []string{`{"product_code":`, `{"colour":"red"}`, `{"amount":500}`, `{} {}`} {
		_, err := reg.Call(ctx, CreateBooking, json.RawMessage(raw))
		var ve *models.ValidationError
		require.True(t, errors.As(err, &ve), raw)
		assert.Equal(t, "arguments", ve.Field)
	}
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateAndDelete(t *testing.T) {
	svc := new(mockService)
	reg := NewRegistry(svc, nil)
	ctx := context.Background()

	svc.On("Update", ctx, mock.MatchedBy(func(r *models.BookingRecord) bool { return r.ID == "VS001" })).Return(nil).Once()
	svc.On("Delete", ctx, "VS001").Return(nil).Once()
	svc.On("Delete", ctx, "VS404").Return(&models.NotFoundError{ID: "VS404"}).Once()

	out, err := reg.Call(ctx, UpdateBooking, json.RawMessage(`{"id":"VS001","product_code":"P","product_name":"N","booking_status":"PENDING"}`))
	require.NoError(t, err)
	assert.Nil(t, out)

	out, err = reg.Call(ctx, DeleteBookingByID, json.RawMessage(`{"id":"VS001"}`))
	require.NoError(t, err)
	assert.Nil(t, out)

	_, err = reg.Call(ctx, DeleteBookingByID, json.RawMessage(`{"id":"VS404"}`))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = reg.Call(ctx, DeleteBookingByID, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}
