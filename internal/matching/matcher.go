// internal/matching/matcher.go
package matching

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/fingerprint"
)

const (
	DefaultMinConfidence = 0.5
	DefaultMaxResults    = 10

	// Upper bound on concurrent comparisons per Match call.
	compareWorkers = 8
)

// Candidate is an original work offered to the matcher.
type Candidate struct {
	ID          uuid.UUID
	Fingerprint string
}

// Match is one ranked result.
type Match struct {
	ID         uuid.UUID `json:"id"`
	Confidence float64   `json:"confidence"`
}

// Matcher ranks candidate original works by acoustic similarity to a
// derivative work's fingerprint. It is stateless and safe for
// concurrent use.
type Matcher struct {
	MinConfidence float64
	MaxResults    int
}

func NewMatcher(minConfidence float64, maxResults int) *Matcher {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Matcher{MinConfidence: minConfidence, MaxResults: maxResults}
}

// Match compares the derivative fingerprint against every candidate,
// drops results below the confidence threshold, and returns the
// survivors ordered by descending confidence. Ties keep candidate
// insertion order so results are deterministic. An empty result is a
// valid outcome; only an empty candidate pool is an error.
func (m *Matcher) Match(ctx context.Context, derivativeFP string, candidates []Candidate) ([]Match, error) {
	if err := fingerprint.Validate(derivativeFP); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, apperrors.New(apperrors.KindNoCandidates, "candidate pool is empty")
	}

	// Comparisons are pure, so they fan out across a bounded worker
	// pool and merge positionally before sorting.
	type scored struct {
		index      int
		confidence float64
		err        error
	}

	results := make([]scored, len(candidates))
	sem := make(chan struct{}, compareWorkers)
	var wg sync.WaitGroup

	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate Candidate) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i] = scored{index: i, err: apperrors.Wrap(apperrors.KindUnavailable, "matching cancelled", err)}
				return
			}

			confidence, err := fingerprint.Compare(derivativeFP, candidate.Fingerprint)
			results[i] = scored{index: i, confidence: confidence, err: err}
		}(i, candidate)
	}
	wg.Wait()

	matches := make([]Match, 0, len(candidates))
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if r.confidence < m.MinConfidence {
			continue
		}
		matches = append(matches, Match{ID: candidates[i].ID, Confidence: r.confidence})
	}

	// Stable keeps insertion order for equal confidences.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	if len(matches) > m.MaxResults {
		matches = matches[:m.MaxResults]
	}

	return matches, nil
}

// Best returns the single highest-confidence match, or nil when no
// candidate clears the threshold.
func (m *Matcher) Best(ctx context.Context, derivativeFP string, candidates []Candidate) (*Match, error) {
	matches, err := m.Match(ctx, derivativeFP, candidates)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}
