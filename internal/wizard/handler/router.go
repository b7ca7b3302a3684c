package handler

import (
	"agenda/pkg/client"

	"github.com/julienschmidt/httprouter"
)

const (
	sessionsPath = "/api/v1/tenants/:tenant/sessions"
	sessionPath  = sessionsPath + "/:id"
)

func (h *SessionHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST(sessionsPath, h.Create)
	router.GET(sessionPath, h.Get)
	router.POST(sessionPath+"/events", h.Dispatch)
}

// RegisterRoutes mounts the store on the paths the availability client uses.
func (h *StoreHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET(client.AvailabilityPath(":tenant"), h.Check)
	router.POST(client.BookingsPath(":tenant"), h.CreateBooking)
}
