package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"showroom/internal/config"
	"showroom/internal/export"
	"showroom/internal/repository"
	"showroom/internal/tools"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type testHTTP struct {
	ts       *httptest.Server
	bookings *fakeBookings
	audit    *repository.MemoryStateStore
}

func newTestHTTPServer(t *testing.T, cfg config.APIConfig) *testHTTP {
	t.Helper()

	bookings := seededBookings()
	audit := repository.NewMemoryStateStore(100)
	registry := tools.NewRegistry(bookings, nil)
	server := NewHTTPServer(cfg, registry, bookings, audit, NewGuard(cfg, audit, nil), nil)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return &testHTTP{ts: ts, bookings: bookings, audit: audit}
}

func (h *testHTTP) do(t *testing.T, method, path, key, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, h.ts.URL+path, reader)
	require.NoError(t, err)
	if key != "" {
		req.Header.Set("X-Api-Key", key+"-key")
		req.Header.Set("X-Api-Extra", key+"-extra")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealthz(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	resp := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decodeBody(t, resp)["status"])
}

func TestListTools(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	resp := h.do(t, http.MethodGet, "/api/v1/tools", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/v1/tools", "reader", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Tools []struct {
			Name        string         `json:"name"`
			Permission  string         `json:"permission"`
			Declaration map[string]any `json:"declaration"`
		} `json:"tools"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Tools, 5)
	assert.Equal(t, tools.GetAllBookings, body.Tools[0].Name)
	assert.Equal(t, tools.GetAllBookings, body.Tools[0].Declaration["name"])
}

func TestCallGetAllBookings(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	resp := h.do(t, http.MethodPost, "/api/v1/tools/get_all_bookings", "reader", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	text, ok := decodeBody(t, resp)["result"].(string)
	require.True(t, ok)

	var records []map[string]string
	require.NoError(t, json.Unmarshal([]byte(text), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "VS001", records[0]["id"])
	assert.Equal(t, "VS003", records[1]["id"])
}

func TestCallCreateBooking(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())
	body := `{"product_code":"P9","product_name":"Kurta","booking_status":"PENDING"}`

	resp := h.do(t, http.MethodPost, "/api/v1/tools/create_booking", "reader", body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = h.do(t, http.MethodPost, "/api/v1/tools/create_booking", "writer", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "VS004", decodeBody(t, resp)["result"])
	assert.Len(t, h.bookings.records, 4)
}

func TestCallErrorMapping(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	tests := []struct {
		name   string
		tool   string
		body   string
		status int
	}{
		{"MissingField", "create_booking", `{"product_name":"Kurta","booking_status":"PENDING"}`, http.StatusBadRequest},
		{"UnknownArgument", "create_booking", `{"colour":"red"}`, http.StatusBadRequest},
		{"MalformedJSON", "update_booking", `{"id":`, http.StatusBadRequest},
		{"GetMissing", "get_booking_by_id", `{"id":"VS404"}`, http.StatusNotFound},
		{"DeleteMissing", "delete_booking_by_id", `{"id":"VS404"}`, http.StatusNotFound},
		{"BadStoredStatus", "get_booking_by_id", `{"id":"VS003"}`, http.StatusInternalServerError},
		{"UnknownTool", "drop_table", `{}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.do(t, http.MethodPost, "/api/v1/tools/"+tt.tool, "admin", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.NotEmpty(t, decodeBody(t, resp)["error"])
		})
	}
}

func TestCallUpstreamFailure(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())
	h.bookings.err = errors.New("googleapi: Error 503: backend error")

	resp := h.do(t, http.MethodPost, "/api/v1/tools/get_all_bookings", "reader", "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestCallDeleteThenList(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	resp := h.do(t, http.MethodPost, "/api/v1/tools/delete_booking_by_id", "writer", `{"id":"VS001"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decodeBody(t, resp)["result"])

	resp = h.do(t, http.MethodPost, "/api/v1/tools/get_all_bookings", "reader", "")
	text, _ := decodeBody(t, resp)["result"].(string)
	assert.NotContains(t, text, "VS001")
}

func TestExportXLSX(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())

	resp := h.do(t, http.MethodGet, "/api/v1/bookings/export.xlsx", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, tc := range []struct {
		query string
		rows  int
	}{
		{"", 3},
		{"?include_deleted=true", 4},
	} {
		resp := h.do(t, http.MethodGet, "/api/v1/bookings/export.xlsx"+tc.query, "reader", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, export.ContentType, resp.Header.Get("Content-Type"))

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		rows, err := f.GetRows(export.SheetName)
		require.NoError(t, err)
		assert.Len(t, rows, tc.rows, tc.query)
		f.Close()
	}
}

func TestEventsFeed(t *testing.T) {
	h := newTestHTTPServer(t, testAPIConfig())
	ctx := context.Background()
	require.NoError(t, h.audit.Append(ctx, []byte(`{"type":"booking_created"}`)))
	require.NoError(t, h.audit.Append(ctx, []byte(`{"type":"booking_deleted"}`)))

	resp := h.do(t, http.MethodGet, "/api/v1/events?limit=1", "reader", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Events []map[string]string `json:"events"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Events, 1)
	assert.Equal(t, "booking_deleted", body.Events[0]["type"])

	resp = h.do(t, http.MethodGet, "/api/v1/events?limit=zero", "reader", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPQuota(t *testing.T) {
	cfg := testAPIConfig()
	cfg.Quota = config.APIQuotaConfig{Limit: 1, Window: time.Minute}
	h := newTestHTTPServer(t, cfg)

	resp := h.do(t, http.MethodGet, "/api/v1/tools", "reader", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/api/v1/tools", "reader", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
