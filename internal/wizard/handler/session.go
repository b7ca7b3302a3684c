package handler

import (
	"context"
	"net/http"

	"agenda/internal/sessions"
	"agenda/internal/wizard"
	apperrors "agenda/pkg/errors"
	httputil "agenda/pkg/http"
	"agenda/pkg/logger"
	"agenda/pkg/middleware"
	"agenda/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TenantResolver interface {
	TenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
}

// SessionResponse carries the wizard state. Error is set whenever the event
// failed, including rejections that left the state untouched.
type SessionResponse struct {
	SessionID string                   `json:"session_id"`
	TenantID  string                   `json:"tenant_id"`
	State     wizard.State             `json:"state"`
	Error     *apperrors.ErrorResponse `json:"error,omitempty"`
}

type SessionHandler struct {
	service  *wizard.Service
	sessions *sessions.Registry
	tenants  TenantResolver
	log      *logger.Logger
}

func NewSessionHandler(service *wizard.Service, registry *sessions.Registry, tenants TenantResolver, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		service:  service,
		sessions: registry,
		tenants:  tenants,
		log:      log,
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	tenant, err := h.tenants.TenantBySlug(r.Context(), ps.ByName("tenant"))
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	wz := h.service.Start(tenant.ID)
	h.sessions.Add(wz)
	h.log.Info("Booking session started",
		"request_id", middleware.RequestID(r.Context()),
		"session_id", wz.ID(),
		"tenant_id", tenant.ID,
	)

	if err := httputil.WriteCreated(w, newSessionResponse(wz, wz.State(), nil)); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wz, err := h.lookup(r.Context(), ps)
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}

	if err := httputil.WriteSuccess(w, newSessionResponse(wz, wz.State(), nil)); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

// Dispatch applies one event. The response status follows the event's error,
// and the body always carries the resulting state.
func (h *SessionHandler) Dispatch(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	wz, err := h.lookup(r.Context(), ps)
	if err != nil {
		h.writeError(w, "Dispatch", err)
		return
	}

	var req EventRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Dispatch", err)
		return
	}
	ev, err := decodeEvent(req, r.Header.Get(middleware.IdempotencyHeader))
	if err != nil {
		h.writeError(w, "Dispatch", err)
		return
	}

	state, err := wz.Dispatch(r.Context(), ev)
	status := http.StatusOK
	var appErr *apperrors.AppError
	if err != nil {
		appErr = apperrors.AsAppError(err)
		status = appErr.StatusCode()
	}

	if writeErr := httputil.WriteJSON(w, status, newSessionResponse(wz, state, appErr)); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", "Dispatch", "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *SessionHandler) lookup(ctx context.Context, ps httprouter.Params) (*wizard.Wizard, error) {
	tenant, err := h.tenants.TenantBySlug(ctx, ps.ByName("tenant"))
	if err != nil {
		return nil, err
	}
	return h.sessions.Get(tenant.ID, ps.ByName("id"))
}

func (h *SessionHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func newSessionResponse(wz *wizard.Wizard, state wizard.State, appErr *apperrors.AppError) SessionResponse {
	resp := SessionResponse{
		SessionID: wz.ID(),
		TenantID:  wz.TenantID(),
		State:     state,
	}
	if appErr != nil {
		body := appErr.Response()
		resp.Error = &body
	}
	return resp
}
