package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nine = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestAvailabilityClient_Check(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tenants/t1/availability", r.URL.Path)
		assert.Equal(t, "ana", r.URL.Query().Get("staff_id"))
		assert.Equal(t, "2026-03-02T09:00:00Z", r.URL.Query().Get("start_time"))
		assert.Equal(t, "2026-03-02T09:30:00Z", r.URL.Query().Get("end_time"))
		_ = json.NewEncoder(w).Encode(AvailabilityResponse{Available: true})
	}))
	defer srv.Close()

	c := NewAvailabilityClient(srv.URL, 0)
	free, err := c.Check(context.Background(), "t1", "ana", nine, nine.Add(30*time.Minute))
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAvailabilityClient_CreateBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/tenants/t1/bookings", r.URL.Path)
		var req model.BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req.CustomerID)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(CreateBookingResponse{ID: "b1"})
	}))
	defer srv.Close()

	c := NewAvailabilityClient(srv.URL, 0)
	id, err := c.CreateBooking(context.Background(), model.BookingRequest{
		TenantID: "t1", CustomerID: "c1", StaffID: "ana", StartTime: nine, EndTime: nine.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, "b1", id)
}

func TestAvailabilityClient_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   apperrors.Kind
	}{
		{"conflict", http.StatusConflict, apperrors.KindConflict},
		{"not found", http.StatusNotFound, apperrors.KindNotFound},
		{"bad request", http.StatusBadRequest, apperrors.KindValidation},
		{"unprocessable", http.StatusUnprocessableEntity, apperrors.KindValidation},
		{"server error", http.StatusBadGateway, apperrors.KindTransient},
		{"throttled", http.StatusTooManyRequests, apperrors.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"X","message":"nope"}`))
			}))
			defer srv.Close()

			c := NewAvailabilityClient(srv.URL, 0)
			_, err := c.CreateBooking(context.Background(), model.BookingRequest{TenantID: "t1"})
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestAvailabilityClient_TransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewAvailabilityClient(url, 0)
	_, err := c.Check(context.Background(), "t1", "ana", nine, nine.Add(time.Hour))
	assert.True(t, apperrors.IsTransient(err))
}

func TestHttpClient_RateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewHttpClient(srv.URL, 1)
	_, err := c.GET(context.Background(), "/")
	require.NoError(t, err, "first request uses the burst")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.GET(ctx, "/")
	assert.Error(t, err, "second request cannot get a token before the deadline")
}
