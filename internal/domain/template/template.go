// path: internal/domain/template/template.go
// Package template implements the Template aggregate: a reusable prompt
// plus the running UCB statistics the selector consumes (spec §3, §4.L).
package template

import (
	"github.com/google/uuid"
)

// Template is a named prompt the UCBSelector can choose for a day's post.
type Template struct {
	id                uuid.UUID
	name              string
	prompt            string
	preferredEngine   string
	enabled           bool
	totalUses         int
	avgEngagementRate float64
}

// New creates a template that is enabled from the start.
func New(name, prompt, preferredEngine string) (*Template, error) {
	if name == "" {
		return nil, ErrInvalidName
	}
	if prompt == "" {
		return nil, ErrInvalidPrompt
	}
	return &Template{
		id:              uuid.New(),
		name:            name,
		prompt:          prompt,
		preferredEngine: preferredEngine,
		enabled:         true,
	}, nil
}

// Reconstruct recreates a Template from persistence.
func Reconstruct(id uuid.UUID, name, prompt, preferredEngine string, enabled bool, totalUses int, avgEngagementRate float64) *Template {
	return &Template{
		id:                id,
		name:              name,
		prompt:            prompt,
		preferredEngine:   preferredEngine,
		enabled:           enabled,
		totalUses:         totalUses,
		avgEngagementRate: avgEngagementRate,
	}
}

func (t *Template) ID() uuid.UUID              { return t.id }
func (t *Template) Name() string               { return t.name }
func (t *Template) Prompt() string             { return t.prompt }
func (t *Template) PreferredEngine() string    { return t.preferredEngine }
func (t *Template) Enabled() bool              { return t.enabled }
func (t *Template) TotalUses() int             { return t.totalUses }
func (t *Template) AvgEngagementRate() float64 { return t.avgEngagementRate }

func (t *Template) Enable()  { t.enabled = true }
func (t *Template) Disable() { t.enabled = false }

// Update applies admin-editable fields.
func (t *Template) Update(name, prompt, preferredEngine string) error {
	if name == "" {
		return ErrInvalidName
	}
	if prompt == "" {
		return ErrInvalidPrompt
	}
	t.name = name
	t.prompt = prompt
	t.preferredEngine = preferredEngine
	return nil
}

// RecordEngagement folds a newly-synced engagementRate into the running
// mean and increments totalUses (spec §4.L feedback loop). engagementRate
// = (likes + replies + reposts) / max(views, 1), computed by the caller.
func (t *Template) RecordEngagement(engagementRate float64) {
	n := float64(t.totalUses)
	t.avgEngagementRate = (t.avgEngagementRate*n + engagementRate) / (n + 1)
	t.totalUses++
}
