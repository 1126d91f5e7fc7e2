// path: internal/application/pipeline/generator.go
// Package pipeline implements the ContentPipeline (spec §4.G): the
// DRAFT->GENERATING->PENDING_REVIEW state walk that turns a prompt into a
// reviewable Revision, retrying across the primary/fallback engine pair and
// gating every candidate through the similarity guardrail before handoff to
// the ReviewCoordinator.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
	"github.com/techappsUT/socialqueue-ucb/internal/domain/post"
	"github.com/techappsUT/socialqueue-ucb/internal/llm"
	"github.com/techappsUT/socialqueue-ucb/internal/similarity"
)

// MaxAttempts bounds the generate/validate/embed/similarity retry loop
// (spec §4.G.3 default).
const MaxAttempts = 3

// RecentWindow is how many of the most recently POSTED embeddings the
// similarity guardrail compares each candidate against (spec §9).
const RecentWindow = similarity.DefaultRecentN

// ReviewStarter hands a generated revision off to the review surface.
// Implemented by internal/application/review.Coordinator; declared here so
// pipeline never imports the review package back (review already depends on
// the post and chat packages pipeline also uses).
type ReviewStarter interface {
	StartReview(ctx context.Context, p *post.Post, r *post.Revision) error
}

// LLMClient is the subset of *llm.Client the generator needs, narrowed to
// an interface so tests can substitute a stub engine pair.
type LLMClient interface {
	Generate(ctx context.Context, engine llm.Engine, prompt string) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeneratePayload is the jobqueue.QueueGenerate job body.
type GeneratePayload struct {
	PostID uuid.UUID `json:"postId"`
	Prompt string    `json:"prompt"`
	Engine string    `json:"engine,omitempty"`
}

// Generator implements the ContentPipeline.
type Generator struct {
	posts       post.Repository
	llm         LLMClient
	checker     *similarity.Checker
	reviews     ReviewStarter
	logger      common.Logger
	maxAttempts int
	recentN     int
}

// New builds a Generator. maxAttempts/recentN fall back to the spec
// defaults when zero.
func New(posts post.Repository, llmClient LLMClient, checker *similarity.Checker, reviews ReviewStarter, logger common.Logger, maxAttempts, recentN int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = MaxAttempts
	}
	if recentN <= 0 {
		recentN = RecentWindow
	}
	return &Generator{
		posts:       posts,
		llm:         llmClient,
		checker:     checker,
		reviews:     reviews,
		logger:      logger,
		maxAttempts: maxAttempts,
		recentN:     recentN,
	}
}

// Generate runs the full attempt loop for payload.PostID. Called either for
// a fresh DRAFT post or a regenerate re-entry already sitting in GENERATING
// (spec §4.H regenerate action).
func (g *Generator) Generate(ctx context.Context, payload GeneratePayload) error {
	p, err := g.posts.FindByID(ctx, payload.PostID)
	if err != nil {
		return err
	}

	switch p.Status() {
	case post.StatusDraft:
		if err := p.StartGenerating(); err != nil {
			return err
		}
		if err := g.posts.Update(ctx, p); err != nil {
			return err
		}
	case post.StatusGenerating:
		// Re-entry from a regenerate action; already transitioned.
	default:
		return apperr.New(apperr.ClassPrecondition, fmt.Sprintf("post %s is not eligible for generation (status=%s)", p.ID(), p.Status()))
	}

	recent, err := g.posts.RecentPostedEmbeddings(ctx, g.recentN)
	if err != nil {
		return err
	}

	engine := post.EnginePrimary
	var lastSimilarityPostID uuid.UUID
	var lastFailureReason string
	var lastSimilarText string
	var lastSimilarEngine post.Engine
	var lastSimilarMax float64

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		text, genErr := g.llm.Generate(ctx, llm.Engine(engineName(engine)), payload.Prompt)
		if genErr != nil {
			lastFailureReason = genErr.Error()
			if apperr.Retryable(genErr) {
				// A provider-quality failure (rate limit/network/5xx) on the
				// primary moves every subsequent attempt this cycle to the
				// fallback engine (spec §4.G.2a).
				engine = post.EngineFallback
				continue
			}
			return g.fail(ctx, p, "GENERATION_FAILED", genErr.Error())
		}

		if err := post.ValidateContent(text); err != nil {
			lastFailureReason = err.Error()
			continue
		}

		vector, embErr := g.llm.Embed(ctx, text)
		if embErr != nil {
			lastFailureReason = embErr.Error()
			if apperr.Retryable(embErr) {
				continue
			}
			return g.fail(ctx, p, "GENERATION_FAILED", embErr.Error())
		}

		maxSim, maxPostID := g.checker.CheckAgainstRecent(vector, toRecentEmbeddings(recent))
		if g.checker.Exceeds(maxSim) {
			lastSimilarityPostID = maxPostID
			lastSimilarText, lastSimilarEngine, lastSimilarMax = text, engine, maxSim
			lastFailureReason = fmt.Sprintf("similarity %.3f exceeds threshold against post %s", maxSim, maxPostID)
			continue
		}

		return g.accept(ctx, p, text, engine, maxSim, vector)
	}

	if lastSimilarityPostID != uuid.Nil {
		nextNo, err := g.posts.NextRevisionNo(ctx, p.ID())
		if err != nil {
			return err
		}
		revision, err := post.NewRevision(p.ID(), nextNo, lastSimilarText, lastSimilarEngine, lastSimilarMax)
		if err != nil {
			return err
		}
		if err := g.posts.CreateRevision(ctx, revision); err != nil {
			return err
		}
		if err := p.FailSimilarityExceeded(); err != nil {
			return err
		}
		g.logger.Warn("content pipeline exhausted attempts on similarity", "postId", p.ID(), "lastMatch", lastSimilarityPostID)
		return g.posts.Update(ctx, p)
	}
	return g.fail(ctx, p, "GENERATION_FAILED", lastFailureReason)
}

// CreateManual persists an operator-authored revision directly, bypassing
// the engine loop and similarity gate (spec §4.G: "manual override path").
func (g *Generator) CreateManual(ctx context.Context, postID uuid.UUID, content string) error {
	p, err := g.posts.FindByID(ctx, postID)
	if err != nil {
		return err
	}
	if p.Status() == post.StatusDraft {
		if err := p.StartGenerating(); err != nil {
			return err
		}
		if err := g.posts.Update(ctx, p); err != nil {
			return err
		}
	}
	return g.accept(ctx, p, content, post.EngineManual, 0, nil)
}

func (g *Generator) accept(ctx context.Context, p *post.Post, text string, engine post.Engine, maxSim float64, vector []float32) error {
	nextNo, err := g.posts.NextRevisionNo(ctx, p.ID())
	if err != nil {
		return err
	}
	revision, err := post.NewRevision(p.ID(), nextNo, text, engine, maxSim)
	if err != nil {
		return err
	}
	if err := g.posts.CreateRevision(ctx, revision); err != nil {
		return err
	}
	if vector != nil {
		if err := g.posts.CreateEmbedding(ctx, &post.Embedding{
			RevisionID: revision.ID(),
			PostID:     p.ID(),
			Vector:     vector,
		}); err != nil {
			return err
		}
	}
	if err := p.MarkPendingReview(); err != nil {
		return err
	}
	if err := g.posts.Update(ctx, p); err != nil {
		return err
	}
	g.logger.Info("content pipeline accepted revision", "postId", p.ID(), "revisionNo", revision.RevisionNo(), "engine", engine)
	return g.reviews.StartReview(ctx, p, revision)
}

func (g *Generator) fail(ctx context.Context, p *post.Post, code, message string) error {
	if err := p.MarkFailed(code, message); err != nil {
		return err
	}
	g.logger.Error("content pipeline failed", "postId", p.ID(), "code", code, "message", message)
	return g.posts.Update(ctx, p)
}

func engineName(e post.Engine) string {
	switch e {
	case post.EngineFallback:
		return "fallback"
	default:
		return "primary"
	}
}

func toRecentEmbeddings(embeddings []*post.Embedding) []similarity.RecentEmbedding {
	out := make([]similarity.RecentEmbedding, 0, len(embeddings))
	for _, e := range embeddings {
		out = append(out, similarity.RecentEmbedding{PostID: e.PostID, Vector: e.Vector})
	}
	return out
}
