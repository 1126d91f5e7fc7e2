// path: internal/application/auth/login.go
package auth

import (
	"context"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	opauth "github.com/techappsUT/socialqueue-ucb/internal/auth"
)

// LoginUseCase authenticates an operator through the PipelineController's
// bearer-auth surface (spec §6), issuing the access/refresh pair the RBAC
// middleware expects.
type LoginUseCase struct {
	authService *opauth.Service
	logger      common.Logger
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginOutput struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	Operator     OperatorDTO `json:"operator"`
}

type OperatorDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewLoginUseCase(authService *opauth.Service, logger common.Logger) *LoginUseCase {
	return &LoginUseCase{authService: authService, logger: logger}
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	result, err := uc.authService.Login(input.Email, input.Password)
	if err != nil {
		uc.logger.Warn("login failed", "email", input.Email)
		return nil, err
	}

	return &LoginOutput{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		Operator: OperatorDTO{
			ID:    result.Operator.ID.String(),
			Email: result.Operator.Email,
			Role:  string(result.Operator.Role),
		},
	}, nil
}
