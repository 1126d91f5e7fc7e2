// path: internal/handlers/webhook_handler_test.go
package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techappsUT/socialqueue-ucb/internal/application/review"
	"github.com/techappsUT/socialqueue-ucb/internal/chat"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
)

const webhookSigningSecret = "webhook-secret"

func signWebhookBody(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSigningSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newTestWebhookHandler() (*WebhookHandler, *fakePostRepo, *fakeReviewRepo, *fakeRegenerator) {
	posts := newFakePostRepo()
	reviews := newFakeReviewRepo()
	regenerator := &fakeRegenerator{}
	coordinator := review.New(posts, reviews, fakeChatNotifier{}, regenerator, testLogger{}, reviewAdminUserID)
	notifier := chat.New(chat.Config{SigningSecret: webhookSigningSecret})
	return NewWebhookHandler(coordinator, notifier, testLogger{}), posts, reviews, regenerator
}

func TestWebhookHandler_Handle_RejectsInvalidSignature(t *testing.T) {
	h, _, _, _ := newTestWebhookHandler()

	body := []byte(`{"events":[]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/chat", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", "not-a-real-signature")
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWebhookHandler_Handle_PostbackApprovesReview(t *testing.T) {
	h, posts, reviews, _ := newTestWebhookHandler()
	_, token := seedPendingReview(t, posts, reviews)

	body := []byte(`{"events":[{"type":"postback","postback":{"data":"action=approve&token=` + token + `"},"source":{"userId":"` + reviewAdminUserID + `"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/chat", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	reviewerID := review.ReviewerIDFor(reviewAdminUserID)
	req2, ok := reviews.byToken[token]
	require.True(t, ok)
	assert.Equal(t, reviewerID, req2.ReviewerID())
}

func TestWebhookHandler_Handle_UnparsablePostbackIgnored(t *testing.T) {
	h, _, _, _ := newTestWebhookHandler()

	body := []byte(`{"events":[{"type":"postback","postback":{"data":"%zz"},"source":{"userId":"` + reviewAdminUserID + `"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/chat", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookHandler_Handle_TextMessageCapturesEdit(t *testing.T) {
	h, posts, reviews, _ := newTestWebhookHandler()
	reqRecord, _ := seedPendingReview(t, posts, reviews)

	rev, err := post.NewRevision(reqRecord.PostID(), 1, "original text", post.EnginePrimary, 0)
	require.NoError(t, err)
	require.NoError(t, posts.CreateRevision(context.Background(), rev))

	body := []byte(`{"events":[{"type":"message","message":{"type":"text","text":"make it shorter"},"source":{"userId":"` + reviewAdminUserID + `"}}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/chat", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhookHandler_Handle_InvalidJSONBody(t *testing.T) {
	h, _, _, _ := newTestWebhookHandler()

	body := []byte(`not-json`)
	req := httptest.NewRequest(http.MethodPost, "/api/webhook/chat", bytes.NewReader(body))
	req.Header.Set("X-Line-Signature", signWebhookBody(body))
	rec := httptest.NewRecorder()

	h.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
