// path: internal/auth/service.go

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/operator"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOperatorNotFound    = errors.New("operator not found")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
)

// AuthResult is returned by Login/RefreshAccessToken.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Operator     *operator.Operator
}

// Service authenticates operators against the single-tenant admin store
// (spec's operator/session model, SUPPLEMENTED FEATURES) the same way the
// teacher's auth.Service authenticates multi-tenant users, minus the
// signup/email-verification flow that belonged to self-serve team
// accounts — operators here are provisioned out of band, not signed up.
type Service struct {
	store        *operator.Store
	tokenService *TokenService
}

func NewService(store *operator.Store, tokenService *TokenService) *Service {
	return &Service{
		store:        store,
		tokenService: tokenService,
	}
}

// Login authenticates an operator and returns a token pair.
func (s *Service) Login(email, password string) (*AuthResult, error) {
	op, err := s.store.FindByEmail(email)
	if err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := VerifyPassword(password, op.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenService.GenerateAccessToken(op.ID, op.Email, string(op.Role))
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken(op.ID)
	if err != nil {
		return nil, err
	}

	sess := &operator.Session{
		OperatorID: op.ID,
		TokenHash:  hashToken(refreshToken),
		ExpiresAt:  time.Now().Add(30 * 24 * time.Hour),
	}
	if err := s.store.CreateSession(sess); err != nil {
		return nil, err
	}

	if err := s.store.RecordLogin(op); err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, Operator: op}, nil
}

// RefreshAccessToken issues a new access token for a still-valid refresh token.
func (s *Service) RefreshAccessToken(refreshToken string) (*AuthResult, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	operatorID, err := uuid.Parse(claims.OperatorID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if _, err := s.store.FindSessionByTokenHash(hashToken(refreshToken)); err != nil {
		if errors.Is(err, operator.ErrSessionNotFound) {
			return nil, ErrRefreshTokenRevoked
		}
		return nil, err
	}

	op, err := s.store.FindByID(operatorID)
	if err != nil {
		if errors.Is(err, operator.ErrNotFound) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}

	accessToken, err := s.tokenService.GenerateAccessToken(op.ID, op.Email, string(op.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResult{AccessToken: accessToken, RefreshToken: refreshToken, Operator: op}, nil
}

// RevokeRefreshToken logs an operator out of the session tied to refreshToken.
func (s *Service) RevokeRefreshToken(refreshToken string) error {
	return s.store.RevokeSessionByTokenHash(hashToken(refreshToken))
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
