// path: internal/handlers/statistics_handler.go
package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/insights"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/timeslot"
)

// StatisticsHandler serves the read-only analytics views under
// /api/statistics/* (spec §6): derived entirely from existing aggregates,
// no new write path.
type StatisticsHandler struct {
	posts     post.Repository
	templates template.Repository
	timeSlots timeslot.Repository
	insights  insights.Repository
	logger    common.Logger
}

func NewStatisticsHandler(posts post.Repository, templates template.Repository, timeSlots timeslot.Repository, insightsRepo insights.Repository, logger common.Logger) *StatisticsHandler {
	return &StatisticsHandler{posts: posts, templates: templates, timeSlots: timeSlots, insights: insightsRepo, logger: logger}
}

// postStatusCounts are the statuses surfaced on the summary view.
var postStatusCounts = []post.Status{
	post.StatusDraft,
	post.StatusGenerating,
	post.StatusPendingReview,
	post.StatusApproved,
	post.StatusPublishing,
	post.StatusPosted,
	post.StatusFailed,
	post.StatusActionRequired,
	post.StatusSkipped,
}

// Summary handles GET /api/statistics/summary: post counts by status.
func (h *StatisticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	counts := make(map[post.Status]int64, len(postStatusCounts))
	for _, status := range postStatusCounts {
		status := status
		_, total, err := h.posts.List(r.Context(), &status, 0, 1)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to aggregate post counts")
			return
		}
		counts[status] = total
	}
	respondSuccess(w, counts)
}

type templateStatDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	TotalUses         int       `json:"totalUses"`
	AvgEngagementRate float64   `json:"avgEngagementRate"`
}

// Templates handles GET /api/statistics/templates: the UCB performance
// table an operator would use to sanity-check the bandit's choices.
func (h *StatisticsHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	dtos := make([]templateStatDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, templateStatDTO{
			ID:                t.ID(),
			Name:              t.Name(),
			TotalUses:         t.TotalUses(),
			AvgEngagementRate: t.AvgEngagementRate(),
		})
	}
	respondSuccess(w, dtos)
}

type timeSlotStatDTO struct {
	ID            uuid.UUID `json:"id"`
	Label         string    `json:"label"`
	TotalUses     int       `json:"totalUses"`
	AvgEngagement float64   `json:"avgEngagement"`
}

// TimeSlots handles GET /api/statistics/time-slots: per-slot engagement
// aggregates, the same view UCBSelector reads for its slot-level pass.
func (h *StatisticsHandler) TimeSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.timeSlots.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list time slots")
		return
	}
	ids := make([]uuid.UUID, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID())
	}
	stats, err := h.insights.SlotStats(r.Context(), ids)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to aggregate time slot stats")
		return
	}

	dtos := make([]timeSlotStatDTO, 0, len(slots))
	for _, s := range slots {
		stat := stats[s.ID()]
		dtos = append(dtos, timeSlotStatDTO{
			ID:            s.ID(),
			Label:         s.Label(),
			TotalUses:     stat.TotalUses,
			AvgEngagement: stat.AvgEngagement,
		})
	}
	respondSuccess(w, dtos)
}
