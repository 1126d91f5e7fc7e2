// path: internal/operator/store.go
package operator

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("operator not found")
	ErrSessionNotFound = errors.New("operator session not found")
)

// Store is the gorm-backed repository for Operator/Session, mirroring the
// teacher's internal/auth/service.go direct-gorm-query style rather than
// the raw-SQL repositories internal/store uses for the domain aggregates —
// this subsystem stays on gorm deliberately (see DESIGN.md).
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindByEmail(email string) (*Operator, error) {
	var op Operator
	if err := s.db.Where("email = ? AND active = true", email).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (s *Store) FindByID(id uuid.UUID) (*Operator, error) {
	var op Operator
	if err := s.db.Where("id = ? AND active = true", id).First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

func (s *Store) Create(op *Operator) error {
	return s.db.Create(op).Error
}

func (s *Store) RecordLogin(op *Operator) error {
	now := time.Now().UTC()
	op.LastLoginAt = &now
	return s.db.Save(op).Error
}

func (s *Store) CreateSession(sess *Session) error {
	return s.db.Create(sess).Error
}

func (s *Store) FindSessionByTokenHash(tokenHash string) (*Session, error) {
	var sess Session
	err := s.db.Where("token_hash = ? AND revoked = false AND expires_at > ?", tokenHash, time.Now().UTC()).
		First(&sess).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

func (s *Store) RevokeSessionByTokenHash(tokenHash string) error {
	return s.db.Model(&Session{}).Where("token_hash = ?", tokenHash).Update("revoked", true).Error
}

func (s *Store) RevokeAllForOperator(operatorID uuid.UUID) error {
	return s.db.Model(&Session{}).Where("operator_id = ?", operatorID).Update("revoked", true).Error
}
