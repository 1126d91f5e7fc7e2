// path: internal/handlers/post_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/application/pipeline"
	"github.com/techappsUT/socialqueue-ucb/internal/application/publish"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/middleware"
)

// generateEnqueuer is the narrow slice of jobqueue.Dispatcher this handler
// needs to kick off content generation.
type generateEnqueuer interface {
	EnqueueGenerate(ctx context.Context, payload pipeline.GeneratePayload) error
}

// publishEnqueuer is the narrow slice of jobqueue.Dispatcher this handler
// needs to hand an approved, due post to the publish queue.
type publishEnqueuer interface {
	EnqueuePublish(ctx context.Context, payload publish.PublishPayload) error
}

// PostHandler implements the post-facing slice of the external API
// (spec §6): create/list/fetch, the admin HTTP approve/skip shortcut, and
// the manual authoring path.
type PostHandler struct {
	posts     post.Repository
	generator *pipeline.Generator
	generateQ generateEnqueuer
	publishQ  publishEnqueuer
	logger    common.Logger
}

func NewPostHandler(posts post.Repository, generator *pipeline.Generator, generateQ generateEnqueuer, publishQ publishEnqueuer, logger common.Logger) *PostHandler {
	return &PostHandler{posts: posts, generator: generator, generateQ: generateQ, publishQ: publishQ, logger: logger}
}

type createPostRequest struct {
	StylePreset string   `json:"stylePreset"`
	Topic       string   `json:"topic"`
	Keywords    []string `json:"keywords"`
}

// CreatePost handles POST /api/posts: creates a DRAFT post from an
// operator-supplied brief and enqueues its first generation attempt.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	operatorID, err := middleware.GetOperatorID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "missing operator identity")
		return
	}

	prompt := composePrompt(req)
	if prompt == "" {
		respondError(w, http.StatusBadRequest, "topic or stylePreset is required")
		return
	}

	p, err := post.NewPost(operatorID, true, prompt, req.Keywords, nil)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.posts.Create(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist post")
		return
	}

	if err := h.generateQ.EnqueueGenerate(r.Context(), pipeline.GeneratePayload{PostID: p.ID(), Prompt: prompt}); err != nil {
		h.logger.Error("failed to enqueue generate job", "postId", p.ID(), "error", err.Error())
		respondError(w, http.StatusInternalServerError, "failed to enqueue content generation")
		return
	}

	respondCreated(w, postDTOFrom(p, nil))
}

func composePrompt(req createPostRequest) string {
	var parts []string
	if req.Topic != "" {
		parts = append(parts, "Topic: "+req.Topic)
	}
	if req.StylePreset != "" {
		parts = append(parts, "Style: "+req.StylePreset)
	}
	if len(req.Keywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(req.Keywords, ", "))
	}
	return strings.Join(parts, ". ")
}

// GetPost handles GET /api/posts/:id.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	p, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	revisions, err := h.posts.Revisions(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load revisions")
		return
	}
	respondSuccess(w, postDTOFrom(p, revisions))
}

// ListPosts handles GET /api/posts?status=&offset=&limit=.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var statusPtr *post.Status
	if raw := q.Get("status"); raw != "" {
		s := post.Status(raw)
		statusPtr = &s
	}

	offset := parseIntDefault(q.Get("offset"), 0)
	limit := parseIntDefault(q.Get("limit"), 20)

	posts, total, err := h.posts.List(r.Context(), statusPtr, offset, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}

	dtos := make([]postDTO, 0, len(posts))
	for _, p := range posts {
		dtos = append(dtos, postDTOFrom(p, nil))
	}
	respondSuccess(w, listResponse{Items: dtos, Total: total, Offset: offset, Limit: limit})
}

type listResponse struct {
	Items  []postDTO `json:"items"`
	Total  int64     `json:"total"`
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
}

// ApprovePost handles POST /api/posts/:id/approve: the admin HTTP shortcut
// (spec §6) that transitions a post out of PENDING_REVIEW without going
// through a chat review token. A due post (no future scheduledFor) is
// handed straight to the publish queue; otherwise it waits for the
// Scheduler's dispatch tick (spec §4.H).
func (h *PostHandler) ApprovePost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	p, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	if err := p.Approve(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err := h.posts.Update(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist approval")
		return
	}

	if p.ScheduledFor() == nil || !p.ScheduledFor().After(time.Now()) {
		if err := h.publishQ.EnqueuePublish(r.Context(), publish.PublishPayload{PostID: p.ID()}); err != nil {
			h.logger.Error("failed to enqueue publish job after approve", "postId", p.ID(), "error", err.Error())
		}
	}

	respondSuccess(w, postDTOFrom(p, nil))
}

// SkipPost handles POST /api/posts/:id/skip.
func (h *PostHandler) SkipPost(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	p, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "post not found")
		return
	}
	if err := p.Skip(); err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}
	if err := h.posts.Update(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist skip")
		return
	}
	respondSuccess(w, postDTOFrom(p, nil))
}

type manualPostRequest struct {
	Content      string     `json:"content"`
	AccountID    uuid.UUID  `json:"accountId"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// CreateManualPost handles POST /api/posts/manual (spec §6): an
// operator-authored revision that skips the generate/similarity loop.
func (h *PostHandler) CreateManualPost(w http.ResponseWriter, r *http.Request) {
	var req manualPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := post.ValidateContent(req.Content); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AccountID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "accountId is required")
		return
	}

	operatorID, err := middleware.GetOperatorID(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "missing operator identity")
		return
	}

	p, err := post.NewPost(operatorID, false, "", nil, nil)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	p.AssignAccount(req.AccountID)
	if req.ScheduledFor != nil {
		if err := p.SetScheduledFor(*req.ScheduledFor); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := h.posts.Create(r.Context(), p); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist post")
		return
	}

	if err := h.generator.CreateManual(r.Context(), p.ID(), req.Content); err != nil {
		switch {
		case post.IsNotFound(err):
			respondError(w, http.StatusNotFound, "post not found")
		case post.IsValidationError(err), post.IsStatusError(err):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	reloaded, err := h.posts.FindByID(r.Context(), p.ID())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to reload post")
		return
	}
	respondCreated(w, postDTOFrom(reloaded, nil))
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

type postDTO struct {
	ID               uuid.UUID     `json:"id"`
	Status           post.Status   `json:"status"`
	CreatedBy        uuid.UUID     `json:"createdBy"`
	TemplateID       *uuid.UUID    `json:"templateId,omitempty"`
	ThreadsAccountID *uuid.UUID    `json:"threadsAccountId,omitempty"`
	AutoScheduleID   *uuid.UUID    `json:"autoScheduleId,omitempty"`
	PostedAt         *time.Time    `json:"postedAt,omitempty"`
	PostURL          string        `json:"postUrl,omitempty"`
	MediaID          string        `json:"mediaId,omitempty"`
	LastErrorCode    string        `json:"lastErrorCode,omitempty"`
	LastErrorMessage string        `json:"lastErrorMessage,omitempty"`
	IsAIGenerated    bool          `json:"isAiGenerated"`
	Tags             []string      `json:"tags,omitempty"`
	Context          string        `json:"context,omitempty"`
	ScheduledFor     *time.Time    `json:"scheduledFor,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
	Revisions        []revisionDTO `json:"revisions,omitempty"`
}

type revisionDTO struct {
	ID            uuid.UUID   `json:"id"`
	RevisionNo    int         `json:"revisionNo"`
	Content       string      `json:"content"`
	EngineUsed    post.Engine `json:"engineUsed"`
	SimilarityMax float64     `json:"similarityMax"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func postDTOFrom(p *post.Post, revisions []*post.Revision) postDTO {
	dto := postDTO{
		ID:               p.ID(),
		Status:           p.Status(),
		CreatedBy:        p.CreatedBy(),
		TemplateID:       p.TemplateID(),
		ThreadsAccountID: p.ThreadsAccountID(),
		AutoScheduleID:   p.AutoScheduleID(),
		PostedAt:         p.PostedAt(),
		PostURL:          p.PostURL(),
		MediaID:          p.MediaID(),
		LastErrorCode:    p.LastErrorCode(),
		LastErrorMessage: p.LastErrorMessage(),
		IsAIGenerated:    p.IsAIGenerated(),
		Tags:             p.Tags(),
		Context:          p.Context(),
		ScheduledFor:     p.ScheduledFor(),
		CreatedAt:        p.CreatedAt(),
		UpdatedAt:        p.UpdatedAt(),
	}
	for _, rev := range revisions {
		dto.Revisions = append(dto.Revisions, revisionDTO{
			ID:            rev.ID(),
			RevisionNo:    rev.RevisionNo(),
			Content:       rev.Content(),
			EngineUsed:    rev.EngineUsed(),
			SimilarityMax: rev.SimilarityMax(),
			CreatedAt:     rev.CreatedAt(),
		})
	}
	return dto
}
