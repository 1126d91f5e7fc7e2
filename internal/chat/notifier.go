// path: internal/chat/notifier.go
// Package chat implements ChatNotifier (spec §4.E): review cards and plain
// text pushed to a reviewer's chat identity, plus inbound webhook signature
// verification. The notifier carries no awareness of post/review state; it
// only renders and delivers.
package chat

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
)

const (
	// DefaultBaseURL is the messaging platform's push endpoint root.
	DefaultBaseURL = "https://api.line.me/v2/bot"
	// DefaultTimeout bounds every outbound call (spec §5).
	DefaultTimeout = 15 * time.Second
)

// Config carries the notifier's channel credentials
// (internal/config.ChatConfig feeds this).
type Config struct {
	ChannelAccessToken string
	SigningSecret      string
	AdminUserID        string
	BaseURL            string
}

// Notifier is the ChatNotifier implementation.
type Notifier struct {
	http *http.Client
	cfg  Config
}

// New builds a Notifier. cfg.BaseURL defaults to DefaultBaseURL when empty.
func New(cfg Config) *Notifier {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Notifier{http: &http.Client{Timeout: DefaultTimeout}, cfg: cfg}
}

// ReviewCard is the structured message ReviewCoordinator asks the notifier
// to render: three clearly labeled actions, each payload carrying a review
// token (spec §4.E). ReviewCoordinator fills all three fields with the
// request's single one-shot token.
type ReviewCard struct {
	Content          string
	ApproveToken     string
	RegenerateToken  string
	SkipToken        string
	ScheduledFor     *time.Time
}

type pushMessage struct {
	To       string        `json:"to"`
	Messages []interface{} `json:"messages"`
}

// SendReviewCard renders and pushes a ReviewCard to userID.
func (n *Notifier) SendReviewCard(ctx context.Context, userID string, card ReviewCard) error {
	flex := buildReviewFlex(card)
	return n.push(ctx, userID, []interface{}{flex})
}

// SendText pushes plain text to userID (used for admin notifications and
// edit-then-publish confirmation cards).
func (n *Notifier) SendText(ctx context.Context, userID, text string) error {
	return n.push(ctx, userID, []interface{}{map[string]string{"type": "text", "text": text}})
}

func (n *Notifier) push(ctx context.Context, userID string, messages []interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	body, err := json.Marshal(pushMessage{To: userID, Messages: messages})
	if err != nil {
		return apperr.Wrap(apperr.ClassValidation, "marshal chat push", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.BaseURL+"/message/push", bytes.NewReader(body))
	if err != nil {
		return apperr.Wrap(apperr.ClassValidation, "build chat push request", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.cfg.ChannelAccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return apperr.Wrap(apperr.ClassNetwork, "chat push timed out", err)
		}
		return apperr.Wrap(apperr.ClassNetwork, "chat push failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return apperr.New(apperr.ClassRateLimit, "chat platform rate limited")
	}
	if resp.StatusCode >= 500 {
		return apperr.New(apperr.ClassProvider, "chat platform returned server error")
	}
	if resp.StatusCode >= 400 {
		return apperr.New(apperr.ClassValidation, "chat platform rejected push")
	}
	return nil
}

// VerifyWebhookSignature checks the X-Line-Signature-style header against
// an HMAC-SHA256 digest of the raw body, base64-encoded, adapted from the
// teacher's X-Hub-Signature-256 verification over raw hex.
func (n *Notifier) VerifyWebhookSignature(rawBody []byte, signatureHeader string) bool {
	mac := hmac.New(sha256.New, []byte(n.cfg.SigningSecret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signatureHeader))
}

func buildReviewFlex(card ReviewCard) map[string]interface{} {
	actions := []map[string]interface{}{
		{"type": "postback", "label": "Approve", "data": "action=approve&token=" + card.ApproveToken},
		{"type": "postback", "label": "Regenerate", "data": "action=regenerate&token=" + card.RegenerateToken},
		{"type": "postback", "label": "Skip", "data": "action=skip&token=" + card.SkipToken},
	}
	body := card.Content
	if card.ScheduledFor != nil {
		body = body + "\n\nScheduled for: " + card.ScheduledFor.Format(time.RFC3339)
	}
	return map[string]interface{}{
		"type": "flex",
		"altText": "Review draft post",
		"contents": map[string]interface{}{
			"type": "bubble",
			"body": map[string]interface{}{
				"type":     "box",
				"layout":   "vertical",
				"contents": []map[string]interface{}{{"type": "text", "text": body, "wrap": true}},
			},
			"footer": map[string]interface{}{
				"type":     "box",
				"layout":   "horizontal",
				"contents": toFooterButtons(actions),
			},
		},
	}
}

func toFooterButtons(actions []map[string]interface{}) []map[string]interface{} {
	buttons := make([]map[string]interface{}, 0, len(actions))
	for _, a := range actions {
		buttons = append(buttons, map[string]interface{}{"type": "button", "action": a})
	}
	return buttons
}
