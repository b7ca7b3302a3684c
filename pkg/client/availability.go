package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"
)

const storeName = "Availability store"

// AvailabilityClient talks to a remote availability store over HTTP. Status
// codes map onto the error taxonomy: 409 is a lost slot, 404 a vanished
// entity, 400 and 422 bad input, anything else retryable.
type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseURL string, rps int) *AvailabilityClient {
	return &AvailabilityClient{httpClient: NewHttpClient(baseURL, rps)}
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type CreateBookingResponse struct {
	ID string `json:"id"`
}

func AvailabilityPath(tenantID string) string {
	return "/api/v1/tenants/" + url.PathEscape(tenantID) + "/availability"
}

func BookingsPath(tenantID string) string {
	return "/api/v1/tenants/" + url.PathEscape(tenantID) + "/bookings"
}

func (c *AvailabilityClient) Check(ctx context.Context, tenantID, staffID string, start, end time.Time) (bool, error) {
	q := url.Values{}
	q.Set("staff_id", staffID)
	q.Set("start_time", start.UTC().Format(time.RFC3339))
	q.Set("end_time", end.UTC().Format(time.RFC3339))

	resp, err := c.httpClient.GET(ctx, AvailabilityPath(tenantID)+"?"+q.Encode())
	if err != nil {
		return false, apperrors.UnavailableWithCause(storeName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, statusError(resp)
	}

	var body AvailabilityResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return false, apperrors.UnavailableWithCause(storeName, fmt.Errorf("failed to decode availability: %w", err))
	}
	return body.Available, nil
}

func (c *AvailabilityClient) CreateBooking(ctx context.Context, req model.BookingRequest) (string, error) {
	resp, err := c.httpClient.POST(ctx, BookingsPath(req.TenantID), req)
	if err != nil {
		return "", apperrors.UnavailableWithCause(storeName, err)
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var body CreateBookingResponse
	if err := resp.DecodeJSON(&body); err != nil || body.ID == "" {
		return "", apperrors.UnavailableWithCause(storeName, fmt.Errorf("malformed booking response: %s", string(resp.Body)))
	}
	return body.ID, nil
}

func statusError(resp *Response) error {
	msg := GetErrorMessage(resp)
	switch resp.StatusCode {
	case http.StatusConflict:
		return apperrors.BookingConflict(msg, nil)
	case http.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, msg, http.StatusNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(msg)
	default:
		return apperrors.UnavailableWithCause(storeName, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
}
