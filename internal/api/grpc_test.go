package api

import (
	"context"
	"net"
	"testing"

	"showroom/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newTestGRPCClient(t *testing.T) (*BookingToolsClient, *fakeBookings) {
	t.Helper()

	cfg := testAPIConfig()
	bookings := seededBookings()
	registry := tools.NewRegistry(bookings, nil)

	lis := bufconn.Listen(1 << 20)
	srv, err := NewGRPCServerWithListener(cfg, lis, registry, NewGuard(cfg, nil, nil), nil)
	require.NoError(t, err)
	go func() { _ = srv.Serve() }()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewBookingToolsClient(conn), bookings
}

func withKey(key string) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(),
		"x-api-key", key+"-key", "x-api-extra", key+"-extra")
}

func TestGRPCListBookings(t *testing.T) {
	client, _ := newTestGRPCClient(t)

	var header metadata.MD
	list, err := client.ListBookings(withKey("reader"), grpc.Header(&header))
	require.NoError(t, err)
	require.Len(t, list.Values, 2)
	assert.Equal(t, "VS001", list.Values[0].GetStructValue().Fields["id"].GetStringValue())
	assert.NotEmpty(t, header.Get(requestIDMetadataKey))
}

func TestGRPCCreateGetDelete(t *testing.T) {
	client, bookings := newTestGRPCClient(t)
	ctx := withKey("writer")

	in, err := structpb.NewStruct(map[string]any{
		"product_code":   "P9",
		"product_name":   "Kurta",
		"booking_status": "CONFIRMED",
		"amount":         "750",
	})
	require.NoError(t, err)

	id, err := client.CreateBooking(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "VS004", id)

	got, err := client.GetBooking(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Kurta", got.Fields["product_name"].GetStringValue())
	assert.Equal(t, "UNPAID", got.Fields["amount_status"].GetStringValue())
	assert.True(t, got.Fields["is_active"].GetBoolValue())

	in.Fields["id"] = structpb.NewStringValue(id)
	in.Fields["amount_status"] = structpb.NewStringValue("PAID")
	require.NoError(t, client.UpdateBooking(ctx, in))
	assert.Equal(t, "PAID", bookings.records[3].AmountStatus)

	require.NoError(t, client.DeleteBooking(ctx, id))
	assert.False(t, bookings.records[3].Active())
}

func TestGRPCErrorCodes(t *testing.T) {
	client, _ := newTestGRPCClient(t)

	_, err := client.GetBooking(withKey("reader"), "VS404")
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetBooking(withKey("reader"), "VS003")
	assert.Equal(t, codes.DataLoss, status.Code(err))

	err = client.DeleteBooking(withKey("writer"), "VS404")
	assert.Equal(t, codes.NotFound, status.Code(err))

	err = client.DeleteBooking(withKey("writer"), "")
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bad, _ := structpb.NewStruct(map[string]any{"product_code": "P1", "amount": 500})
	_, err = client.CreateBooking(withKey("writer"), bad)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	err = client.DeleteBooking(withKey("reader"), "VS001")
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = client.ListBookings(context.Background())
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
