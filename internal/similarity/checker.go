// path: internal/similarity/checker.go
// Package similarity implements SimilarityChecker (spec §4.F): cosine
// similarity of a candidate embedding against the most recently POSTED
// embeddings, gating the content pipeline's near-duplicate rejection.
package similarity

import (
	"math"

	"github.com/google/uuid"
)

// DefaultThreshold is the cosine-similarity ceiling above which a
// candidate is rejected as a near-duplicate (spec §4.F default).
const DefaultThreshold = 0.86

// DefaultRecentN is the default window of recent POSTED embeddings
// compared against (spec §4.G step 2c).
const DefaultRecentN = 60

// Checker compares a candidate vector against recently posted embeddings.
type Checker struct {
	Threshold float64
}

// New builds a Checker with the given threshold (0 defaults to
// DefaultThreshold).
func New(threshold float64) *Checker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Checker{Threshold: threshold}
}

// CheckAgainstRecent returns the maximum cosine similarity between
// candidate and recent, along with the post whose embedding produced it.
// An empty recent set short-circuits to zero similarity so the retry loop
// never deadlocks on a cold start (spec §9).
func (c *Checker) CheckAgainstRecent(candidate []float32, recent []RecentEmbedding) (maxSim float64, maxPostID uuid.UUID) {
	if len(recent) == 0 {
		return 0, uuid.Nil
	}
	for _, r := range recent {
		sim := cosineSimilarity(candidate, r.Vector)
		if sim > maxSim {
			maxSim = sim
			maxPostID = r.PostID
		}
	}
	return maxSim, maxPostID
}

// Exceeds reports whether maxSim breaches the configured threshold.
func (c *Checker) Exceeds(maxSim float64) bool {
	return maxSim > c.Threshold
}

// RecentEmbedding pairs an embedding vector with the post it was produced
// for, as returned by post.Repository.RecentPostedEmbeddings joined
// against the owning post.
type RecentEmbedding struct {
	PostID uuid.UUID
	Vector []float32
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
