// path: internal/application/auth/logout.go
package auth

import (
	"context"
	"fmt"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	opauth "github.com/techappsUT/socialqueue-ucb/internal/auth"
)

type LogoutUseCase struct {
	authService *opauth.Service
	logger      common.Logger
}

type LogoutInput struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutOutput struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewLogoutUseCase(authService *opauth.Service, logger common.Logger) *LogoutUseCase {
	return &LogoutUseCase{authService: authService, logger: logger}
}

func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) (*LogoutOutput, error) {
	if input.RefreshToken == "" {
		return nil, fmt.Errorf("refresh token is required")
	}

	if err := uc.authService.RevokeRefreshToken(input.RefreshToken); err != nil {
		uc.logger.Error("failed to revoke refresh token", "error", err)
		return nil, fmt.Errorf("failed to logout")
	}

	uc.logger.Info("operator logged out")

	return &LogoutOutput{Success: true, Message: "Logged out successfully"}, nil
}
