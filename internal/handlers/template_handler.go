// path: internal/handlers/template_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/template"
)

// TemplateHandler serves the admin-only template CRUD surface (spec §6).
type TemplateHandler struct {
	templates template.Repository
	logger    common.Logger
}

func NewTemplateHandler(templates template.Repository, logger common.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

type templateRequest struct {
	Name            string `json:"name"`
	Prompt          string `json:"prompt"`
	PreferredEngine string `json:"preferredEngine"`
}

type templateDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Prompt            string    `json:"prompt"`
	PreferredEngine   string    `json:"preferredEngine"`
	Enabled           bool      `json:"enabled"`
	TotalUses         int       `json:"totalUses"`
	AvgEngagementRate float64   `json:"avgEngagementRate"`
}

func templateDTOFrom(t *template.Template) templateDTO {
	return templateDTO{
		ID:                t.ID(),
		Name:              t.Name(),
		Prompt:            t.Prompt(),
		PreferredEngine:   t.PreferredEngine(),
		Enabled:           t.Enabled(),
		TotalUses:         t.TotalUses(),
		AvgEngagementRate: t.AvgEngagementRate(),
	}
}

// List handles GET /api/templates.
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	dtos := make([]templateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, templateDTOFrom(t))
	}
	respondSuccess(w, dtos)
}

// Get handles GET /api/templates/:id.
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	t, err := h.templates.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "template not found")
		return
	}
	respondSuccess(w, templateDTOFrom(t))
}

// Create handles POST /api/templates.
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := template.New(req.Name, req.Prompt, req.PreferredEngine)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.templates.Create(r.Context(), t); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create template")
		return
	}
	respondCreated(w, templateDTOFrom(t))
}

// Update handles PUT /api/templates/:id.
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.templates.WithRowLock(r.Context(), id, func(t *template.Template) error {
		return t.Update(req.Name, req.Prompt, req.PreferredEngine)
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.templates.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload template")
		return
	}
	respondSuccess(w, templateDTOFrom(t))
}

// Delete handles DELETE /api/templates/:id.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	if err := h.templates.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}
	respondNoContent(w)
}
