package handler

import (
	"fmt"
	"net/http"
	"time"

	"agenda/internal/availability"
	"agenda/pkg/client"
	apperrors "agenda/pkg/errors"
	httputil "agenda/pkg/http"
	"agenda/pkg/logger"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// StoreHandler exposes the local booking store over the same routes the
// remote availability client calls, so one deployment can serve another.
type StoreHandler struct {
	store availability.Store
	log   *logger.Logger
}

func NewStoreHandler(store availability.Store, log *logger.Logger) *StoreHandler {
	return &StoreHandler{store: store, log: log}
}

func (h *StoreHandler) Check(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	query := r.URL.Query()
	staffID := query.Get("staff_id")
	if staffID == "" {
		h.writeError(w, "Check", apperrors.InvalidInput("staff_id is required"))
		return
	}
	start, err := parseTime(query.Get("start_time"), "start_time")
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}
	end, err := parseTime(query.Get("end_time"), "end_time")
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	available, err := h.store.Check(r.Context(), ps.ByName("tenant"), staffID, start, end)
	if err != nil {
		h.writeError(w, "Check", err)
		return
	}

	if err := httputil.WriteSuccess(w, client.AvailabilityResponse{Available: available}); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *StoreHandler) CreateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}
	if req.TenantID == "" {
		req.TenantID = ps.ByName("tenant")
	}
	if req.TenantID != ps.ByName("tenant") {
		h.writeError(w, "CreateBooking", apperrors.InvalidInput("tenant_id does not match the path"))
		return
	}
	if req.StaffID == "" || req.ServiceID == "" || req.CustomerID == "" {
		h.writeError(w, "CreateBooking", apperrors.InvalidInput("staff_id, service_id and customer_id are required"))
		return
	}

	id, err := h.store.CreateBooking(r.Context(), req)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, client.CreateBookingResponse{ID: id}); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *StoreHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func parseTime(value, field string) (time.Time, error) {
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(field + " is required")
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s: %s", field, value))
	}
	return t, nil
}
