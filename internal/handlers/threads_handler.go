// path: internal/handlers/threads_handler.go
package handlers

import (
	"net/http"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/social"
	"github.com/techappsUT/socialqueue-ucb/internal/middleware"
	"github.com/techappsUT/socialqueue-ucb/internal/threads"
)

// ThreadsHandler serves the Threads OAuth callback (spec §6, §4.D): it
// completes the authorization-code exchange, upgrades to a long-lived
// token, and registers (or re-links) the ThreadsAccount the token belongs
// to.
type ThreadsHandler struct {
	client  *threads.Client
	cipher  *threads.TokenEncryption
	social  social.Repository
	logger  common.Logger
}

func NewThreadsHandler(client *threads.Client, cipher *threads.TokenEncryption, socialRepo social.Repository, logger common.Logger) *ThreadsHandler {
	return &ThreadsHandler{client: client, cipher: cipher, social: socialRepo, logger: logger}
}

// OAuthCallback handles GET /api/threads/oauth/callback?code=.
func (h *ThreadsHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "code is required")
		return
	}

	operatorID, err := middleware.GetOperatorID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "missing operator identity")
		return
	}

	shortToken, err := h.client.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("threads code exchange failed", "error", err.Error())
		respondError(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	longToken, expiresAt, err := h.client.ExchangeForLongLived(r.Context(), shortToken)
	if err != nil {
		h.logger.Error("threads long-lived exchange failed", "error", err.Error())
		respondError(w, http.StatusBadGateway, "failed to obtain a long-lived token")
		return
	}

	profile, err := h.client.FetchProfile(r.Context(), longToken)
	if err != nil {
		h.logger.Error("threads profile fetch failed", "error", err.Error())
		respondError(w, http.StatusBadGateway, "failed to resolve threads account")
		return
	}

	account, err := h.social.FindDefaultActiveAccount(r.Context())
	switch {
	case err != nil && social.IsNotFound(err):
		account, err = social.NewAccount(operatorID, profile.Username, profile.ID, true)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.social.CreateAccount(r.Context(), account); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to register threads account")
			return
		}
	case err != nil:
		respondError(w, http.StatusInternalServerError, "failed to look up threads account")
		return
	case account.Status() != social.AccountStatusActive:
		account.Unlock()
		if err := h.social.UpdateAccount(r.Context(), account); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to reactivate threads account")
			return
		}
	}

	encrypted, err := h.cipher.Encrypt(longToken)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to seal access token")
		return
	}

	auth, err := social.NewAuth(account.ID(), encrypted, expiresAt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.social.UpsertAuth(r.Context(), auth); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist access token")
		return
	}

	respondSuccess(w, map[string]interface{}{
		"accountId": account.ID(),
		"username":  account.Username(),
		"expiresAt": expiresAt,
	})
}
