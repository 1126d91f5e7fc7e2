// path: internal/operator/session.go
package operator

import (
	"time"

	"github.com/google/uuid"
)

// Session is a refresh-token row, kept on gorm like the teacher's
// RefreshToken model. TokenHash is the sha256 hex digest of the refresh
// token, never the token itself.
type Session struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OperatorID uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (Session) TableName() string {
	return "operator_sessions"
}
