// path: internal/handlers/timeslot_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/timeslot"
)

// TimeSlotHandler serves the admin-only time-slot CRUD surface (spec §6).
type TimeSlotHandler struct {
	timeSlots timeslot.Repository
	logger    common.Logger
}

func NewTimeSlotHandler(timeSlots timeslot.Repository, logger common.Logger) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlots: timeSlots, logger: logger}
}

type timeSlotRequest struct {
	Label       string `json:"label"`
	StartHour   int    `json:"startHour"`
	StartMinute int    `json:"startMinute"`
	EndHour     int    `json:"endHour"`
	EndMinute   int    `json:"endMinute"`
	ActiveDays  []int  `json:"activeDays"`
}

type timeSlotDTO struct {
	ID          uuid.UUID `json:"id"`
	Label       string    `json:"label"`
	StartHour   int       `json:"startHour"`
	StartMinute int       `json:"startMinute"`
	EndHour     int       `json:"endHour"`
	EndMinute   int       `json:"endMinute"`
	ActiveDays  []int     `json:"activeDays"`
	Enabled     bool      `json:"enabled"`
}

func timeSlotDTOFrom(t *timeslot.TimeSlot) timeSlotDTO {
	return timeSlotDTO{
		ID:          t.ID(),
		Label:       t.Label(),
		StartHour:   t.StartHour(),
		StartMinute: t.StartMinute(),
		EndHour:     t.EndHour(),
		EndMinute:   t.EndMinute(),
		ActiveDays:  t.ActiveDays(),
		Enabled:     t.Enabled(),
	}
}

// List handles GET /api/time-slots.
func (h *TimeSlotHandler) List(w http.ResponseWriter, r *http.Request) {
	slots, err := h.timeSlots.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list time slots")
		return
	}
	dtos := make([]timeSlotDTO, 0, len(slots))
	for _, s := range slots {
		dtos = append(dtos, timeSlotDTOFrom(s))
	}
	respondSuccess(w, dtos)
}

// Get handles GET /api/time-slots/:id.
func (h *TimeSlotHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid time slot id")
		return
	}
	s, err := h.timeSlots.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "time slot not found")
		return
	}
	respondSuccess(w, timeSlotDTOFrom(s))
}

// Create handles POST /api/time-slots.
func (h *TimeSlotHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, err := timeslot.New(req.Label, req.StartHour, req.StartMinute, req.EndHour, req.EndMinute, req.ActiveDays)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.timeSlots.Create(r.Context(), s); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create time slot")
		return
	}
	respondCreated(w, timeSlotDTOFrom(s))
}

// Update handles PUT /api/time-slots/:id: the window and weekday set are
// replaced wholesale by constructing a fresh aggregate under the same ID,
// since TimeSlot exposes no partial mutator for its window fields.
func (h *TimeSlotHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid time slot id")
		return
	}
	existing, err := h.timeSlots.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "time slot not found")
		return
	}

	var req timeSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := timeslot.New(req.Label, req.StartHour, req.StartMinute, req.EndHour, req.EndMinute, req.ActiveDays)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	replacement := timeslot.Reconstruct(id, updated.Label(), updated.StartHour(), updated.StartMinute(), updated.EndHour(), updated.EndMinute(), updated.ActiveDays(), existing.Enabled())

	if err := h.timeSlots.Update(r.Context(), replacement); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update time slot")
		return
	}
	respondSuccess(w, timeSlotDTOFrom(replacement))
}

// Delete handles DELETE /api/time-slots/:id.
func (h *TimeSlotHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid time slot id")
		return
	}
	if err := h.timeSlots.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete time slot")
		return
	}
	respondNoContent(w)
}
