package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"

	pkghttp "github.com/Arihant25/isitopen/pkg/http"
	pkglogger "github.com/Arihant25/isitopen/pkg/logger"
)

// AdminHandler handles the admin console endpoints. Every operation is
// gated on the admin PIN (or a session token issued by Verify).
type AdminHandler struct {
	service *services.AdminService
	gate    *PINGate
	audit   *pkglogger.AuditLogger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service *services.AdminService, gate *PINGate, audit *pkglogger.AuditLogger) *AdminHandler {
	return &AdminHandler{
		service: service,
		gate:    gate,
		audit:   audit,
	}
}

// Request DTOs

// VerifyRequest is the admin login body
type VerifyRequest struct {
	PIN string `json:"pin" validate:"required"`
}

// ChangePINRequest rotates the admin PIN
type ChangePINRequest struct {
	CurrentPIN string `json:"currentPin" validate:"required"`
	NewPIN     string `json:"newPin" validate:"required,len=4,numeric"`
}

// AdminAuthRequest authenticates console reads by PIN (a bearer token
// works as an alternative)
type AdminAuthRequest struct {
	AdminPIN string `json:"adminPin"`
}

// ChangeCanteenPINRequest sets a new PIN for one canteen
type ChangeCanteenPINRequest struct {
	AdminPIN  string `json:"adminPin"`
	CanteenID string `json:"canteenId" validate:"required"`
	NewPIN    string `json:"newPin" validate:"required,len=4,numeric"`
}

// bearerToken extracts a bearer token from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// Verify handles POST /api/admin/verify: admin PIN login, returning a
// session token on success.
func (h *AdminHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "PIN is required")
		return
	}

	ip := pkghttp.ClientIP(r)
	deviceID := pkghttp.DeviceID(r)
	identifier := pkghttp.Identifier(r)
	key := models.AdminLoginKey(identifier)

	res, ok := h.gate.check(r.Context(), w, models.KeyAdminLogin, key, ip, deviceID, req.PIN)
	if !ok {
		return
	}

	credentialErr := h.service.VerifyPIN(r.Context(), req.PIN)
	if !h.gate.finish(r.Context(), w, res, models.KeyAdminLogin, key, ip, deviceID, credentialErr) {
		return
	}

	session, err := h.service.IssueSession()
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     session.Token,
		"expiresAt": session.ExpiresAt,
	})
}

// ChangePIN handles PATCH /api/admin/pin
func (h *AdminHandler) ChangePIN(w http.ResponseWriter, r *http.Request) {
	var req ChangePINRequest
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
	key := models.AdminPINChangeKey(ip)

	res, ok := h.gate.check(r.Context(), w, models.KeyAdminPINChange, key, ip, deviceID, req.CurrentPIN)
	if !ok {
		return
	}

	credentialErr := h.service.VerifyPIN(r.Context(), req.CurrentPIN)
	if !h.gate.finish(r.Context(), w, res, models.KeyAdminPINChange, key, ip, deviceID, credentialErr) {
		h.audit.LogPINChange("admin", ip, false)
		return
	}

	if err := h.service.ChangePIN(r.Context(), req.CurrentPIN, req.NewPIN); err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "PIN must be exactly 4 digits")
			return
		}
		pkghttp.WriteInternalError(w, "Failed to update admin PIN")
		return
	}

	h.audit.LogPINChange("admin", ip, true)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Admin PIN updated successfully",
	})
}

// ListCanteenPINs handles POST /api/admin/canteen-pins: the console's
// view of every canteen credential.
func (h *AdminHandler) ListCanteenPINs(w http.ResponseWriter, r *http.Request) {
	var req AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if !h.authenticate(w, r, models.KeyAdminGetCanteens, models.AdminGetCanteensKey(pkghttp.Identifier(r)), req.AdminPIN) {
		return
	}

	pins, err := h.service.ListCanteenPINs(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch canteens")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, pins)
}

// ChangeCanteenPIN handles PATCH /api/admin/canteen-pin
func (h *AdminHandler) ChangeCanteenPIN(w http.ResponseWriter, r *http.Request) {
	var req ChangeCanteenPINRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	ip := pkghttp.ClientIP(r)
	if !h.authenticate(w, r, models.KeyAdminCanteenPINChange, models.AdminCanteenPINChangeKey(pkghttp.Identifier(r)), req.AdminPIN) {
		return
	}

	if err := h.service.ChangeCanteenPIN(r.Context(), req.CanteenID, req.NewPIN); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Canteen not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "PIN must be exactly 4 digits")
		default:
			pkghttp.WriteInternalError(w, "Failed to update canteen PIN")
		}
		return
	}

	h.audit.LogPINChange("canteen:"+req.CanteenID, ip, true)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Canteen PIN updated successfully",
	})
}

// ListRateLimits handles POST /api/admin/rate-limits: the dashboard view
// of lockout records.
func (h *AdminHandler) ListRateLimits(w http.ResponseWriter, r *http.Request) {
	var req AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.Authenticate(r.Context(), bearerToken(r), req.AdminPIN); err != nil {
		pkghttp.WriteUnauthorized(w, msgInvalidPIN)
		return
	}

	entries, err := h.service.ListLockouts(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch rate limits")
		return
	}
	if entries == nil {
		entries = []models.LockedOutEntry{}
	}

	pkghttp.WriteJSON(w, http.StatusOK, entries)
}

// authenticate accepts a valid bearer token outright, otherwise runs the
// full guardrail composition around the admin PIN. Returns false with the
// response written on any denial.
func (h *AdminHandler) authenticate(w http.ResponseWriter, r *http.Request, endpoint, key, pin string) bool {
	if token := bearerToken(r); token != "" {
		if h.service.Authenticate(r.Context(), token, "") == nil {
			return true
		}
	}

	if pin == "" {
		pkghttp.WriteBadRequest(w, "Admin PIN is required")
		return false
	}

	ip := pkghttp.ClientIP(r)
	deviceID := pkghttp.DeviceID(r)

	res, ok := h.gate.check(r.Context(), w, endpoint, key, ip, deviceID, pin)
	if !ok {
		return false
	}

	credentialErr := h.service.VerifyPIN(r.Context(), pin)
	return h.gate.finish(r.Context(), w, res, endpoint, key, ip, deviceID, credentialErr)
}
