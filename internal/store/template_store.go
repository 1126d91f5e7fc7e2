// path: internal/store/template_store.go
package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
)

// TemplateStore implements template.Repository over Postgres.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore builds a TemplateStore.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) FindByID(ctx context.Context, id uuid.UUID) (*template.Template, error) {
	row := s.db.QueryRowContext(ctx, templateSelect+` WHERE id = $1`, id)
	return scanTemplate(row)
}

func (s *TemplateStore) FindEnabled(ctx context.Context) ([]*template.Template, error) {
	rows, err := s.db.QueryContext(ctx, templateSelect+` WHERE enabled = true ORDER BY name`)
	if err != nil {
		return nil, classifyErr(err, template.ErrNotFound)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (s *TemplateStore) List(ctx context.Context) ([]*template.Template, error) {
	rows, err := s.db.QueryContext(ctx, templateSelect+` ORDER BY name`)
	if err != nil {
		return nil, classifyErr(err, template.ErrNotFound)
	}
	defer rows.Close()
	return scanTemplates(rows)
}

func (s *TemplateStore) Create(ctx context.Context, t *template.Template) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO templates (id, name, prompt, preferred_engine, enabled, total_uses, avg_engagement_rate)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		t.ID(), t.Name(), t.Prompt(), t.PreferredEngine(), t.Enabled(), t.TotalUses(), t.AvgEngagementRate(),
	)
	return classifyErr(err, template.ErrNotFound)
}

func (s *TemplateStore) Update(ctx context.Context, t *template.Template) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE templates SET name=$2, prompt=$3, preferred_engine=$4, enabled=$5,
			total_uses=$6, avg_engagement_rate=$7
		WHERE id = $1`,
		t.ID(), t.Name(), t.Prompt(), t.PreferredEngine(), t.Enabled(), t.TotalUses(), t.AvgEngagementRate(),
	)
	return classifyErr(err, template.ErrNotFound)
}

func (s *TemplateStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1`, id)
	return classifyErr(err, template.ErrNotFound)
}

// WithRowLock runs fn against the Template row locked `FOR UPDATE` for the
// duration of the transaction, so concurrent InsightsSync sweeps cannot race
// on totalUses/avgEngagementRate (spec §5).
func (s *TemplateStore) WithRowLock(ctx context.Context, id uuid.UUID, fn func(t *template.Template) error) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, templateSelect+` WHERE id = $1 FOR UPDATE`, id)
		t, err := scanTemplate(row)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE templates SET name=$2, prompt=$3, preferred_engine=$4, enabled=$5,
				total_uses=$6, avg_engagement_rate=$7
			WHERE id = $1`,
			t.ID(), t.Name(), t.Prompt(), t.PreferredEngine(), t.Enabled(), t.TotalUses(), t.AvgEngagementRate(),
		)
		return classifyErr(err, template.ErrNotFound)
	})
}

const templateSelect = `
	SELECT id, name, prompt, preferred_engine, enabled, total_uses, avg_engagement_rate
	FROM templates`

func scanTemplate(row rowScanner) (*template.Template, error) {
	var (
		id                uuid.UUID
		name, prompt, eng string
		enabled           bool
		totalUses         int
		avgEngagement     float64
	)
	if err := row.Scan(&id, &name, &prompt, &eng, &enabled, &totalUses, &avgEngagement); err != nil {
		return nil, classifyErr(err, template.ErrNotFound)
	}
	return template.Reconstruct(id, name, prompt, eng, enabled, totalUses, avgEngagement), nil
}

func scanTemplates(rows *sql.Rows) ([]*template.Template, error) {
	var out []*template.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
