package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Arihant25/isitopen/internal/models"
	"github.com/Arihant25/isitopen/internal/services"

	pkghttp "github.com/Arihant25/isitopen/pkg/http"
)

// VoteHandler handles community staleness votes
type VoteHandler struct {
	service *services.VoteService
}

// NewVoteHandler creates a new VoteHandler
func NewVoteHandler(service *services.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// SubmitVoteRequest is the vote submission body
type SubmitVoteRequest struct {
	CanteenID string `json:"canteenId" validate:"required"`
	VoteType  string `json:"voteType" validate:"required,oneof=correct incorrect"`
}

// Submit handles POST /api/votes
func (h *VoteHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	summary, err := h.service.Submit(r.Context(), req.CanteenID, req.VoteType)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "Failed to submit vote")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"canteenId":      summary.CanteenID,
		"correctVotes":   summary.CorrectVotes,
		"incorrectVotes": summary.IncorrectVotes,
	})
}

// Current handles GET /api/votes?canteenId=
func (h *VoteHandler) Current(w http.ResponseWriter, r *http.Request) {
	canteenID := r.URL.Query().Get("canteenId")

	votes, err := h.service.CurrentPeriod(r.Context(), canteenID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Failed to fetch votes")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, votes)
}
