// path: internal/operator/operator.go
package operator

import (
	"time"

	"github.com/google/uuid"
)

// Role gates the admin-facing `/api/*` surface of spec §6: admins manage
// templates/time-slots/config, content_creators trigger manual posts,
// reviewers approve/skip through the HTTP surface in addition to the chat
// webhook path.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleContentCreator Role = "content_creator"
	RoleReviewer       Role = "reviewer"
)

// Operator is the single-tenant admin/content_creator/reviewer principal
// that authenticates against the HTTP API, kept on gorm exactly as the
// teacher's models.User is, trimmed of the team/email-verification
// machinery that belonged to its multi-tenant signup flow.
type Operator struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         Role      `gorm:"not null;default:content_creator"`
	Active       bool      `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Operator) TableName() string {
	return "operators"
}
