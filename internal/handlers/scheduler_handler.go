// path: internal/handlers/scheduler_handler.go
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/ucb"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/scheduling"
)

// SchedulerHandler serves the scheduler-config singleton, the auto-schedule
// history view, and the manual trigger-daily-schedule endpoint (spec §6).
type SchedulerHandler struct {
	config    scheduling.ConfigRepository
	schedules scheduling.AutoScheduleRepository
	selector  *ucb.Selector
	logger    common.Logger
}

func NewSchedulerHandler(config scheduling.ConfigRepository, schedules scheduling.AutoScheduleRepository, selector *ucb.Selector, logger common.Logger) *SchedulerHandler {
	return &SchedulerHandler{config: config, schedules: schedules, selector: selector, logger: logger}
}

type schedulerConfigDTO struct {
	ExplorationFactor    float64  `json:"explorationFactor"`
	MinTrialsPerTemplate int      `json:"minTrialsPerTemplate"`
	PostsPerDay          int      `json:"postsPerDay"`
	TimeRangeStart       int      `json:"timeRangeStart"`
	TimeRangeEnd         int      `json:"timeRangeEnd"`
	ActiveDays           []int    `json:"activeDays"`
	AutoScheduleEnabled  bool     `json:"autoScheduleEnabled"`
	AIPrompt             string   `json:"aiPrompt"`
	AIEngine             string   `json:"aiEngine"`
	LineUserID           string   `json:"lineUserId"`
	ThreadsAccountID     *string  `json:"threadsAccountId,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func schedulerConfigDTOFrom(c *scheduling.Config) schedulerConfigDTO {
	return schedulerConfigDTO{
		ExplorationFactor:    c.ExplorationFactor,
		MinTrialsPerTemplate: c.MinTrialsPerTemplate,
		PostsPerDay:          c.PostsPerDay,
		TimeRangeStart:       c.TimeRangeStart,
		TimeRangeEnd:         c.TimeRangeEnd,
		ActiveDays:           c.ActiveDays,
		AutoScheduleEnabled:  c.AutoScheduleEnabled,
		AIPrompt:             c.AIPrompt,
		AIEngine:             c.AIEngine,
		LineUserID:           c.LineUserID,
		ThreadsAccountID:     c.ThreadsAccountID,
		UpdatedAt:            c.UpdatedAt(),
	}
}

// GetConfig handles GET /api/scheduler-config.
func (h *SchedulerHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	c, err := h.config.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load scheduler config")
		return
	}
	respondSuccess(w, schedulerConfigDTOFrom(c))
}

// UpdateConfig handles PUT /api/scheduler-config.
func (h *SchedulerHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req schedulerConfigDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.config.Get(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load scheduler config")
		return
	}

	c.Apply(func(c *scheduling.Config) {
		c.ExplorationFactor = req.ExplorationFactor
		c.MinTrialsPerTemplate = req.MinTrialsPerTemplate
		c.PostsPerDay = req.PostsPerDay
		c.TimeRangeStart = req.TimeRangeStart
		c.TimeRangeEnd = req.TimeRangeEnd
		c.ActiveDays = req.ActiveDays
		c.AutoScheduleEnabled = req.AutoScheduleEnabled
		c.AIPrompt = req.AIPrompt
		c.AIEngine = req.AIEngine
		c.LineUserID = req.LineUserID
		c.ThreadsAccountID = req.ThreadsAccountID
	})

	if err := h.config.Save(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save scheduler config")
		return
	}
	respondSuccess(w, schedulerConfigDTOFrom(c))
}

type autoScheduleDTO struct {
	ID                 uuid.UUID             `json:"id"`
	ScheduleDate       time.Time             `json:"scheduleDate"`
	PostID             *uuid.UUID            `json:"postId,omitempty"`
	ScheduledTime      time.Time             `json:"scheduledTime"`
	SelectedTimeSlotID uuid.UUID             `json:"selectedTimeSlotId"`
	SelectedTemplateID uuid.UUID             `json:"selectedTemplateId"`
	UCBScore           float64               `json:"ucbScore"`
	SelectionReason    string                `json:"selectionReason"`
	Status             scheduling.Status     `json:"status"`
	ExecutedAt         *time.Time            `json:"executedAt,omitempty"`
	ErrorMessage       string                `json:"errorMessage,omitempty"`
}

func autoScheduleDTOFrom(s *scheduling.AutoSchedule) autoScheduleDTO {
	return autoScheduleDTO{
		ID:                 s.ID(),
		ScheduleDate:       s.ScheduleDate(),
		PostID:             s.PostID(),
		ScheduledTime:      s.ScheduledTime(),
		SelectedTimeSlotID: s.SelectedTimeSlotID(),
		SelectedTemplateID: s.SelectedTemplateID(),
		UCBScore:           s.UCBScore(),
		SelectionReason:    s.SelectionReason(),
		Status:             s.Status(),
		ExecutedAt:         s.ExecutedAt(),
		ErrorMessage:       s.ErrorMessage(),
	}
}

// defaultHistoryLimit matches spec §6's "last 30 entries".
const defaultHistoryLimit = 30

// ListAutoSchedules handles GET /api/auto-schedules.
func (h *SchedulerHandler) ListAutoSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.schedules.ListRecent(r.Context(), defaultHistoryLimit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list auto-schedules")
		return
	}
	dtos := make([]autoScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		dtos = append(dtos, autoScheduleDTOFrom(s))
	}
	respondSuccess(w, dtos)
}

// TriggerDailySchedule handles POST /api/trigger-daily-schedule: an
// idempotent manual call into the same materialization path the daily tick
// runs (spec §4.K EnsureTodaysAutoSchedule), for operators who don't want
// to wait for the scheduled tick.
func (h *SchedulerHandler) TriggerDailySchedule(w http.ResponseWriter, r *http.Request) {
	if err := h.selector.MaterializeToday(r.Context()); err != nil {
		h.logger.Error("manual trigger-daily-schedule failed", "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to materialize today's schedule")
		return
	}
	respondSuccess(w, map[string]string{"status": "materialized"})
}
