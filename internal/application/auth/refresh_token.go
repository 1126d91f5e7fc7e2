// path: internal/application/auth/refresh_token.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	opauth "github.com/techappsUT/socialqueue-ucb/internal/auth"
)

// RefreshTokenInput represents the input for refreshing tokens
type RefreshTokenInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshTokenOutput represents the output after refreshing tokens
type RefreshTokenOutput struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// RefreshTokenUseCase rotates the access token for a still-valid refresh token.
type RefreshTokenUseCase struct {
	authService *opauth.Service
	logger      common.Logger
}

func NewRefreshTokenUseCase(authService *opauth.Service, logger common.Logger) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{authService: authService, logger: logger}
}

func (uc *RefreshTokenUseCase) Execute(ctx context.Context, input RefreshTokenInput) (*RefreshTokenOutput, error) {
	result, err := uc.authService.RefreshAccessToken(input.RefreshToken)
	if err != nil {
		uc.logger.Warn(fmt.Sprintf("invalid refresh token attempt: %v", err))
		return nil, fmt.Errorf("invalid or expired refresh token")
	}

	uc.logger.Info(fmt.Sprintf("token refreshed for operator: %s", result.Operator.Email))

	return &RefreshTokenOutput{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}, nil
}
