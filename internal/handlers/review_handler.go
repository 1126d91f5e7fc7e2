// path: internal/handlers/review_handler.go
package handlers

import (
	"net/http"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/review"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	domainreview "github.com/techappsUT/socialqueue-ucb/internal/domain/review"
)

// ReviewHandler serves the chat-link review actions (spec §6): the three
// GET endpoints a reviewer's chat client opens directly from the review
// card's buttons, each carrying the one-shot token and the chat-platform
// user ID that must match the request's assigned reviewer.
type ReviewHandler struct {
	coordinator *review.Coordinator
	logger      common.Logger
}

func NewReviewHandler(coordinator *review.Coordinator, logger common.Logger) *ReviewHandler {
	return &ReviewHandler{coordinator: coordinator, logger: logger}
}

// Approve handles GET /api/review/approve?token=&userId=.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, review.ActionApprove)
}

// Regenerate handles GET /api/review/regenerate?token=&userId=.
func (h *ReviewHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, review.ActionRegenerate)
}

// Skip handles GET /api/review/skip?token=&userId=.
func (h *ReviewHandler) Skip(w http.ResponseWriter, r *http.Request) {
	h.handleAction(w, r, review.ActionSkip)
}

func (h *ReviewHandler) handleAction(w http.ResponseWriter, r *http.Request, action review.Action) {
	token := r.URL.Query().Get("token")
	userID := r.URL.Query().Get("userId")
	if token == "" || userID == "" {
		respondError(w, http.StatusBadRequest, "token and userId are required")
		return
	}

	actingUserID := review.ReviewerIDFor(userID)
	if err := h.coordinator.HandleAction(r.Context(), token, action, actingUserID); err != nil {
		h.respondActionError(w, action, err)
		return
	}
	respondSuccess(w, map[string]string{"action": string(action), "status": "applied"})
}

func (h *ReviewHandler) respondActionError(w http.ResponseWriter, action review.Action, err error) {
	switch {
	case domainreview.IsNotFound(err), post.IsNotFound(err):
		respondError(w, http.StatusNotFound, "review request not found")
	case domainreview.IsConflict(err), post.IsStatusError(err), apperr.IsConflict(err), apperr.IsPrecondition(err):
		respondError(w, http.StatusConflict, err.Error())
	case domainreview.IsValidationError(err), post.IsValidationError(err), apperr.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("review action failed", "action", string(action), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to apply review action")
	}
}
