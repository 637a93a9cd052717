package api

import (
	"context"
	"encoding/json"
	"fmt"

	"showroom/internal/tools"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// BookingToolsServiceName is the gRPC service carrying the booking tools.
// Messages are protobuf well-known types, so no generated code is needed.
const BookingToolsServiceName = "showroom.tools.v1.BookingTools"

// BookingToolsServer is the server API for the BookingTools service.
type BookingToolsServer interface {
	ListBookings(context.Context, *emptypb.Empty) (*structpb.ListValue, error)
	GetBooking(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	CreateBooking(context.Context, *structpb.Struct) (*wrapperspb.StringValue, error)
	UpdateBooking(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	DeleteBooking(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

// methodTools maps each RPC to the tool it invokes.
var methodTools = map[string]string{
	"ListBookings":  tools.GetAllBookings,
	"GetBooking":    tools.GetBookingByID,
	"CreateBooking": tools.CreateBooking,
	"UpdateBooking": tools.UpdateBooking,
	"DeleteBooking": tools.DeleteBookingByID,
}

func fullMethod(method string) string {
	return "/" + BookingToolsServiceName + "/" + method
}

var BookingToolsServiceDesc = grpc.ServiceDesc{
	ServiceName: BookingToolsServiceName,
	HandlerType: (*BookingToolsServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("ListBookings", func() *emptypb.Empty { return new(emptypb.Empty) }, BookingToolsServer.ListBookings),
		unaryMethod("GetBooking", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, BookingToolsServer.GetBooking),
		unaryMethod("CreateBooking", func() *structpb.Struct { return new(structpb.Struct) }, BookingToolsServer.CreateBooking),
		unaryMethod("UpdateBooking", func() *structpb.Struct { return new(structpb.Struct) }, BookingToolsServer.UpdateBooking),
		unaryMethod("DeleteBooking", func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }, BookingToolsServer.DeleteBooking),
	},
	Streams: []grpc.StreamDesc{},
}

func unaryMethod[Req, Resp any](
	name string,
	newReq func() Req,
	call func(BookingToolsServer, context.Context, Req) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(BookingToolsServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func RegisterBookingToolsServer(s grpc.ServiceRegistrar, srv BookingToolsServer) {
	s.RegisterService(&BookingToolsServiceDesc, srv)
}

// BookingToolsClient is the client API for the BookingTools service.
type BookingToolsClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingToolsClient(cc grpc.ClientConnInterface) *BookingToolsClient {
	return &BookingToolsClient{cc: cc}
}

func (c *BookingToolsClient) ListBookings(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, fullMethod("ListBookings"), &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingToolsClient) GetBooking(ctx context.Context, id string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod("GetBooking"), wrapperspb.String(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *BookingToolsClient) CreateBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, fullMethod("CreateBooking"), in, out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

func (c *BookingToolsClient) UpdateBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("UpdateBooking"), in, new(emptypb.Empty), opts...)
}

func (c *BookingToolsClient) DeleteBooking(ctx context.Context, id string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, fullMethod("DeleteBooking"), wrapperspb.String(id), new(emptypb.Empty), opts...)
}

// BookingToolsService serves the gRPC API from the tool registry.
type BookingToolsService struct {
	registry *tools.Registry
}

func NewBookingToolsService(registry *tools.Registry) *BookingToolsService {
	return &BookingToolsService{registry: registry}
}

func (s *BookingToolsService) ListBookings(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	out, err := s.registry.Call(ctx, tools.GetAllBookings, nil)
	if err != nil {
		return nil, toStatus(err)
	}

	text, ok := out.(string)
	if !ok {
		return nil, toStatus(fmt.Errorf("unexpected %T from %s", out, tools.GetAllBookings))
	}
	var items []any
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, toStatus(err)
	}

	list, err := structpb.NewList(items)
	if err != nil {
		return nil, toStatus(err)
	}
	return list, nil
}

func (s *BookingToolsService) GetBooking(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	out, err := s.registry.Call(ctx, tools.GetBookingByID, idArgs(in.GetValue()))
	if err != nil {
		return nil, toStatus(err)
	}
	st, err := toStruct(out)
	if err != nil {
		return nil, toStatus(err)
	}
	return st, nil
}

func (s *BookingToolsService) CreateBooking(ctx context.Context, in *structpb.Struct) (*wrapperspb.StringValue, error) {
	args, err := in.MarshalJSON()
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := s.registry.Call(ctx, tools.CreateBooking, args)
	if err != nil {
		return nil, toStatus(err)
	}
	id, _ := out.(string)
	return wrapperspb.String(id), nil
}

func (s *BookingToolsService) UpdateBooking(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	args, err := in.MarshalJSON()
	if err != nil {
		return nil, toStatus(err)
	}
	if _, err := s.registry.Call(ctx, tools.UpdateBooking, args); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *BookingToolsService) DeleteBooking(ctx context.Context, in *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if _, err := s.registry.Call(ctx, tools.DeleteBookingByID, idArgs(in.GetValue())); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func idArgs(id string) json.RawMessage {
	raw, _ := json.Marshal(map[string]string{"id": id})
	return raw
}

// toStruct round-trips v through JSON into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
