// path: internal/domain/scheduling/config.go
// Package scheduling implements the singleton SchedulerConfig and the
// DailyAutoSchedule aggregate that ties a calendar day to a UCB decision.
package scheduling

import "time"

// Config is the singleton scheduler configuration row (spec §3).
type Config struct {
	ExplorationFactor    float64
	MinTrialsPerTemplate int
	PostsPerDay          int
	TimeRangeStart       int // minute-of-day
	TimeRangeEnd         int
	ActiveDays           []int
	AutoScheduleEnabled  bool
	AIPrompt             string
	AIEngine             string
	LineUserID           string
	ThreadsAccountID     *string
	updatedAt            time.Time
}

// NewConfig seeds the singleton from environment defaults on first boot.
func NewConfig(explorationFactor float64, minTrialsPerTemplate, postsPerDay int) *Config {
	return &Config{
		ExplorationFactor:    explorationFactor,
		MinTrialsPerTemplate: minTrialsPerTemplate,
		PostsPerDay:          postsPerDay,
		TimeRangeStart:       9 * 60,
		TimeRangeEnd:         21 * 60,
		ActiveDays:           []int{1, 2, 3, 4, 5, 6, 7},
		AutoScheduleEnabled:  false,
		updatedAt:            time.Now().UTC(),
	}
}

func (c *Config) UpdatedAt() time.Time { return c.updatedAt }

// Apply merges admin-editable fields and bumps updatedAt.
func (c *Config) Apply(fn func(c *Config)) {
	fn(c)
	c.updatedAt = time.Now().UTC()
}

// ActiveOn reports whether day-of-week d (1=Monday) is eligible for
// automatic scheduling.
func (c *Config) ActiveOn(d int) bool {
	if !c.AutoScheduleEnabled {
		return false
	}
	for _, ad := range c.ActiveDays {
		if ad == d {
			return true
		}
	}
	return false
}
