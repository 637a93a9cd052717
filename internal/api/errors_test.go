package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"showroom/internal/models"
	"showroom/internal/tools"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		http int
		grpc codes.Code
	}{
		{"Validation", &models.ValidationError{Field: "product_code", Message: "is required"}, http.StatusBadRequest, codes.InvalidArgument},
		{"NotFound", fmt.Errorf("delete: %w", &models.NotFoundError{ID: "VS404"}), http.StatusNotFound, codes.NotFound},
		{"EnumDecode", &models.EnumDecodeError{Field: "booking_status", Value: "ON_HOLD"}, http.StatusInternalServerError, codes.DataLoss},
		{"UnknownTool", fmt.Errorf("%w: drop_table", tools.ErrUnknownTool), http.StatusNotFound, codes.Unimplemented},
		{"Unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, codes.Unauthenticated},
		{"PermissionDenied", ErrPermissionDenied, http.StatusForbidden, codes.PermissionDenied},
		{"RateLimited", ErrRateLimited, http.StatusTooManyRequests, codes.ResourceExhausted},
		{"Quota", ErrQuotaExceeded, http.StatusTooManyRequests, codes.ResourceExhausted},
		{"Upstream", errors.New("googleapi: Error 503: backend error"), http.StatusBadGateway, codes.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.http, httpStatus(tt.err))
			assert.Equal(t, tt.grpc, grpcCode(tt.err))
			assert.Equal(t, tt.grpc, status.Code(toStatus(tt.err)))
		})
	}
}

func TestToStatusPassesThrough(t *testing.T) {
	assert.NoError(t, toStatus(nil))

	orig := status.Error(codes.Aborted, "aborted")
	assert.Equal(t, orig, toStatus(orig))
}
