// path: internal/handlers/auth_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/techappsUT/socialqueue-ucb/internal/application/auth"
)

// AuthHandler exposes the operator bearer-auth surface (spec §6): operators
// are provisioned out of band, so this handler only logs them in, refreshes,
// and logs them out — there is no self-service signup/profile CRUD here.
type AuthHandler struct {
	loginUC        *auth.LoginUseCase
	refreshTokenUC *auth.RefreshTokenUseCase
	logoutUC       *auth.LogoutUseCase
}

func NewAuthHandler(
	loginUC *auth.LoginUseCase,
	refreshTokenUC *auth.RefreshTokenUseCase,
	logoutUC *auth.LogoutUseCase,
) *AuthHandler {
	return &AuthHandler{
		loginUC:        loginUC,
		refreshTokenUC: refreshTokenUC,
		logoutUC:       logoutUC,
	}
}

func refreshCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    value,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   maxAge,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	output, err := h.loginUC.Execute(r.Context(), input)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	http.SetCookie(w, refreshCookie(output.RefreshToken, 30*24*60*60))
	output.RefreshToken = ""

	respondSuccess(w, output)
}

// RefreshToken handles POST /api/auth/refresh
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	} else {
		var input auth.RefreshTokenInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		refreshToken = input.RefreshToken
	}

	if refreshToken == "" {
		respondError(w, http.StatusBadRequest, "Refresh token required")
		return
	}

	output, err := h.refreshTokenUC.Execute(r.Context(), auth.RefreshTokenInput{RefreshToken: refreshToken})
	if err != nil {
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	http.SetCookie(w, refreshCookie(output.RefreshToken, 30*24*60*60))
	output.RefreshToken = ""

	respondSuccess(w, output)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie("refresh_token"); err == nil {
		refreshToken = cookie.Value
	}

	output, err := h.logoutUC.Execute(r.Context(), auth.LogoutInput{RefreshToken: refreshToken})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	http.SetCookie(w, refreshCookie("", -1))
	respondSuccess(w, output)
}
