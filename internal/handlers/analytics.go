package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"

	pkghttp "github.com/Arihant25/isitopen/pkg/http"
)

// AnalyticsHandler handles usage-event tracking and summaries
type AnalyticsHandler struct {
	service *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// TrackEventRequest is the analytics tracking body
type TrackEventRequest struct {
	EventType   string            `json:"eventType" validate:"required"`
	CanteenID   *string           `json:"canteenId,omitempty"`
	CanteenName *string           `json:"canteenName,omitempty"`
	UserType    *string           `json:"userType,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Track handles POST /api/analytics
func (h *AnalyticsHandler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, "eventType is required")
		return
	}
	if !models.ValidEventType(req.EventType) {
		pkghttp.WriteBadRequest(w, "Invalid eventType")
		return
	}

	var userAgent *string
	if ua := r.Header.Get("User-Agent"); ua != "" {
		userAgent = &ua
	}

	h.service.Track(r.Context(), &models.AnalyticsEvent{
		EventType:   req.EventType,
		CanteenID:   req.CanteenID,
		CanteenName: req.CanteenName,
		UserType:    req.UserType,
		Metadata:    req.Metadata,
		UserAgent:   userAgent,
	})

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Summary handles GET /api/analytics?startDate=&endDate=
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time

	if s := r.URL.Query().Get("startDate"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			pkghttp.WriteBadRequest(w, "startDate must be YYYY-MM-DD")
			return
		}
		start = parsed
	}

	if e := r.URL.Query().Get("endDate"); e != "" {
		parsed, err := time.Parse("2006-01-02", e)
		if err != nil {
			pkghttp.WriteBadRequest(w, "endDate must be YYYY-MM-DD")
			return
		}
		// Include the whole end day
		end = parsed.Add(24*time.Hour - time.Millisecond)
	}

	summary, err := h.service.Summary(r.Context(), start, end)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch analytics")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, summary)
}
