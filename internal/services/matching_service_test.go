// internal/services/matching_service_test.go
package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/matching"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/repository"
)

type matchingFixture struct {
	service  *MatchingService
	works    *repository.MemoryWorkRepository
	musician uuid.UUID
	holder   uuid.UUID
	derived  models.DerivativeWork
}

func newMatchingFixture(t *testing.T) *matchingFixture {
	t.Helper()

	f := &matchingFixture{
		works:    repository.NewMemoryWorkRepository(),
		musician: uuid.New(),
		holder:   uuid.New(),
	}

	clearanceService := NewClearanceService(repository.NewMemoryClearanceRepository(), f.works, nil)
	matcher := matching.NewMatcher(0.3, 10)
	f.service = NewMatchingService(f.works, matcher, clearanceService)

	f.derived = models.DerivativeWork{
		OwnerID:     f.musician,
		Title:       "Flip",
		Fingerprint: strings.Repeat("Q", 40),
	}
	f.derived.ID = uuid.New()
	f.works.AddDerivative(f.derived)

	return f
}

func (f *matchingFixture) addOriginal(owner uuid.UUID, fp string) models.OriginalWork {
	work := models.OriginalWork{OwnerID: owner, Fingerprint: fp}
	work.ID = uuid.New()
	f.works.AddOriginal(work)
	return work
}

func TestCandidatesRanked(t *testing.T) {
	f := newMatchingFixture(t)

	exact := f.addOriginal(f.holder, f.derived.Fingerprint)
	f.addOriginal(f.holder, strings.Repeat("z", 40))

	ranked, err := f.service.Candidates(context.Background(), f.derived.ID, f.musician)
	require.NoError(t, err)
	require.Len(t, ranked, 1)

	assert.Equal(t, exact.ID, ranked[0].OriginalWork.ID)
	assert.Equal(t, 1.0, ranked[0].Confidence)
}

func TestCandidatesExcludeCallerOwnedOriginals(t *testing.T) {
	f := newMatchingFixture(t)

	f.addOriginal(f.musician, f.derived.Fingerprint)
	f.addOriginal(f.holder, strings.Repeat("z", 40))

	ranked, err := f.service.Candidates(context.Background(), f.derived.ID, f.musician)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestCandidatesOwnerGuard(t *testing.T) {
	f := newMatchingFixture(t)
	f.addOriginal(f.holder, f.derived.Fingerprint)

	_, err := f.service.Candidates(context.Background(), f.derived.ID, uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestCandidatesEmptyCatalog(t *testing.T) {
	f := newMatchingFixture(t)

	_, err := f.service.Candidates(context.Background(), f.derived.ID, f.musician)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNoCandidates))
}

func TestCreateWithMatchingOpensRequestAgainstBestMatch(t *testing.T) {
	f := newMatchingFixture(t)

	best := f.addOriginal(f.holder, f.derived.Fingerprint)
	f.addOriginal(f.holder, strings.Repeat("z", 40))

	clearance, err := f.service.CreateWithMatching(context.Background(), f.musician, &CreateWithMatchingRequest{
		DerivativeWorkID: f.derived.ID,
		UsageDescription: "sampled the drum break",
	})
	require.NoError(t, err)

	assert.Equal(t, best.ID, clearance.OriginalWorkID)
	assert.Equal(t, f.holder, clearance.RightsHolderID)
	assert.Equal(t, models.ClearanceStatusPending, clearance.Status)
	require.NotNil(t, clearance.MatchConfidence)
	assert.Equal(t, 1.0, *clearance.MatchConfidence)
}

func TestCreateWithMatchingNoMatchAboveThreshold(t *testing.T) {
	f := newMatchingFixture(t)
	f.addOriginal(f.holder, strings.Repeat("z", 40))

	_, err := f.service.CreateWithMatching(context.Background(), f.musician, &CreateWithMatchingRequest{
		DerivativeWorkID: f.derived.ID,
		UsageDescription: "sampled the drum break",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestMatchFingerprintPublicLookup(t *testing.T) {
	f := newMatchingFixture(t)

	target := f.addOriginal(f.holder, strings.Repeat("R", 40))

	ranked, err := f.service.MatchFingerprint(context.Background(), strings.Repeat("R", 40))
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, target.ID, ranked[0].OriginalWork.ID)
}
