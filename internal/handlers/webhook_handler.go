// path: internal/handlers/webhook_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/review"
	"github.com/techappsUT/socialqueue-ucb/internal/chat"
)

// WebhookHandler serves POST /api/webhook/chat (spec §6): the signed push
// the chat platform sends for every postback (review action button) and
// inbound message (free-form edit text) event.
type WebhookHandler struct {
	coordinator *review.Coordinator
	notifier    *chat.Notifier
	logger      common.Logger
}

func NewWebhookHandler(coordinator *review.Coordinator, notifier *chat.Notifier, logger common.Logger) *WebhookHandler {
	return &WebhookHandler{coordinator: coordinator, notifier: notifier, logger: logger}
}

type webhookBody struct {
	Events []webhookEvent `json:"events"`
}

type webhookEvent struct {
	Type     string `json:"type"`
	Postback *struct {
		Data string `json:"data"`
	} `json:"postback"`
	Message *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Source struct {
		UserID string `json:"userId"`
	} `json:"source"`
}

// Handle processes POST /api/webhook/chat.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if !h.notifier.VerifyWebhookSignature(raw, r.Header.Get("X-Line-Signature")) {
		respondError(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid webhook payload")
		return
	}

	for _, event := range body.Events {
		h.handleEvent(r.Context(), event)
	}
	respondSuccess(w, map[string]string{"status": "received"})
}

// handleEvent dispatches a single webhook event. Errors are logged, not
// surfaced to the platform: the push has already been accepted, and the
// reviewer sees the outcome (or lack of one) in the chat thread itself.
func (h *WebhookHandler) handleEvent(ctx context.Context, event webhookEvent) {
	reviewerID := review.ReviewerIDFor(event.Source.UserID)

	switch {
	case event.Type == "postback" && event.Postback != nil:
		action, token, err := parsePostbackData(event.Postback.Data)
		if err != nil {
			h.logger.Warn("discarding unparsable postback", "data", event.Postback.Data, "error", err.Error())
			return
		}
		if err := h.coordinator.HandleAction(ctx, token, action, reviewerID); err != nil {
			h.logger.Error("review action from webhook failed", "action", string(action), "error", err.Error())
		}

	case event.Type == "message" && event.Message != nil && event.Message.Type == "text":
		if err := h.coordinator.CaptureEdit(ctx, reviewerID, event.Message.Text); err != nil {
			h.logger.Error("failed to capture edit from webhook", "error", err.Error())
		}

	default:
		h.logger.Debug("ignoring webhook event", "type", event.Type)
	}
}

// parsePostbackData decodes the "action=approve&token=..." form the
// notifier's review-card buttons encode into postback.data.
func parsePostbackData(data string) (review.Action, string, error) {
	values, err := url.ParseQuery(data)
	if err != nil {
		return "", "", err
	}
	return review.Action(values.Get("action")), values.Get("token"), nil
}
