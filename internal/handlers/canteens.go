package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"
	"github.com/go-chi/chi/v5"

	pkghttp "github.com/Arihant25/isitopen/pkg/http"
)

// CanteenHandler handles the student- and owner-facing canteen endpoints
type CanteenHandler struct {
	service   *services.CanteenService
	analytics *services.AnalyticsService
	gate      *PINGate
}

// NewCanteenHandler creates a new CanteenHandler
func NewCanteenHandler(service *services.CanteenService, analytics *services.AnalyticsService, gate *PINGate) *CanteenHandler {
	return &CanteenHandler{
		service:   service,
		analytics: analytics,
		gate:      gate,
	}
}

// UpdateStatusRequest is the owner's status-toggle request body
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=open closed"`
	PIN    string  `json:"pin" validate:"required"`
	Note   *string `json:"note,omitempty" validate:"omitempty,max=200"`
}

// List handles GET /api/canteens
func (h *CanteenHandler) List(w http.ResponseWriter, r *http.Request) {
	canteens, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch canteens")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, canteens)
}

// Get handles GET /api/canteens/{id}
func (h *CanteenHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	canteen, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Canteen not found")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to fetch canteen")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, canteen)
}

// UpdateStatus handles PATCH /api/canteens/{id}: the owner toggles the
// stall open or closed (optionally setting a note) behind the canteen
// PIN, with the full guardrail composition in front.
func (h *CanteenHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ClientIP(r)
	deviceID := pkghttp.DeviceID(r)
	key := models.CanteenLoginKey(id, ip)

	res, ok := h.gate.check(r.Context(), w, models.KeyCanteenLogin, key, ip, deviceID, req.PIN)
	if !ok {
		return
	}

	credentialErr := h.service.VerifyPIN(r.Context(), id, req.PIN)
	if !h.gate.finish(r.Context(), w, res, models.KeyCanteenLogin, key, ip, deviceID, credentialErr) {
		return
	}

	canteen, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.Note)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update canteen")
		return
	}

	h.analytics.TrackOwnerLogin(r.Context(), canteen.ID, canteen.Name)

	pkghttp.WriteJSON(w, http.StatusOK, canteen)
}
