// internal/services/clearance_service_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/repository"
)

type clearanceFixture struct {
	service  *ClearanceService
	repo     *repository.MemoryClearanceRepository
	works    *repository.MemoryWorkRepository
	musician uuid.UUID
	holder   uuid.UUID
	original models.OriginalWork
	derived  models.DerivativeWork
}

func newClearanceFixture(t *testing.T) *clearanceFixture {
	t.Helper()

	f := &clearanceFixture{
		repo:     repository.NewMemoryClearanceRepository(),
		works:    repository.NewMemoryWorkRepository(),
		musician: uuid.New(),
		holder:   uuid.New(),
	}
	f.service = NewClearanceService(f.repo, f.works, nil)

	f.original = models.OriginalWork{
		OwnerID:     f.holder,
		Title:       "Summer Breaks",
		Artist:      "The Holders",
		Fingerprint: strings.Repeat("A", 24),
	}
	f.original.ID = uuid.New()
	f.works.AddOriginal(f.original)

	f.derived = models.DerivativeWork{
		OwnerID:     f.musician,
		Title:       "Summer Breaks Flip",
		Artist:      "MC Requester",
		Fingerprint: strings.Repeat("A", 20) + "zzzz",
	}
	f.derived.ID = uuid.New()
	f.works.AddDerivative(f.derived)

	return f
}

func (f *clearanceFixture) create(t *testing.T) *models.ClearanceRequest {
	t.Helper()

	clearance, err := f.service.Create(context.Background(), f.musician, &CreateClearanceRequest{
		DerivativeWorkID: f.derived.ID,
		OriginalWorkID:   f.original.ID,
		UsageDescription: "8 bar loop of the chorus",
	})
	require.NoError(t, err)
	return clearance
}

func floatPtr(v float64) *float64 { return &v }

func TestCreateClearanceRequest(t *testing.T) {
	f := newClearanceFixture(t)

	before := time.Now()
	clearance := f.create(t)

	assert.Equal(t, models.ClearanceStatusPending, clearance.Status)
	assert.Equal(t, f.musician, clearance.RequesterID)
	assert.Equal(t, f.holder, clearance.RightsHolderID)
	assert.Equal(t, int64(1), clearance.Version)
	assert.False(t, clearance.RequestDate.Before(before))
	assert.Nil(t, clearance.ResponseDate)
	assert.Nil(t, clearance.CounterDate)
	assert.Nil(t, clearance.FinalizedDate)
}

func TestCreateRequiresUsageDescription(t *testing.T) {
	f := newClearanceFixture(t)

	_, err := f.service.Create(context.Background(), f.musician, &CreateClearanceRequest{
		DerivativeWorkID: f.derived.ID,
		OriginalWorkID:   f.original.ID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestCreateRejectsForeignDerivative(t *testing.T) {
	f := newClearanceFixture(t)

	_, err := f.service.Create(context.Background(), uuid.New(), &CreateClearanceRequest{
		DerivativeWorkID: f.derived.ID,
		OriginalWorkID:   f.original.ID,
		UsageDescription: "loop",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestCreateRejectsSelfClearance(t *testing.T) {
	f := newClearanceFixture(t)

	own := models.OriginalWork{OwnerID: f.musician, Fingerprint: strings.Repeat("B", 24)}
	own.ID = uuid.New()
	f.works.AddOriginal(own)

	_, err := f.service.Create(context.Background(), f.musician, &CreateClearanceRequest{
		DerivativeWorkID: f.derived.ID,
		OriginalWorkID:   own.ID,
		UsageDescription: "loop",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestRespondApprove(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	updated, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionApprove,
		TermsOfUse:        "non-exclusive, credit required",
		RoyaltyPercentage: floatPtr(12.5),
		Version:           1,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClearanceStatusApproved, updated.Status)
	assert.Equal(t, "non-exclusive, credit required", updated.TermsOfUse)
	assert.Equal(t, 12.5, *updated.RoyaltyPercentage)
	assert.Equal(t, int64(2), updated.Version)
	require.NotNil(t, updated.ResponseDate)
	assert.False(t, updated.ResponseDate.Before(updated.RequestDate))
}

func TestRespondApproveRequiresTerms(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision: models.DecisionApprove,
		Version:  1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}

func TestRespondRejectRequiresNotes(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision: models.DecisionReject,
		Version:  1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))

	updated, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision: models.DecisionReject,
		Notes:    "uncleared third-party vocals in the sampled section",
		Version:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClearanceStatusRejected, updated.Status)
}

func TestRespondRoleGuardBeatsStatusGuard(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	// The requester impersonating the rights holder fails on role even
	// though the transition itself would be legal.
	_, err := f.service.Respond(context.Background(), clearance.ID, f.musician, &RespondRequest{
		Decision:   models.DecisionApprove,
		TermsOfUse: "terms",
		Version:    1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestRespondOnTerminalStatusFails(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision: models.DecisionReject,
		Notes:    "no",
		Version:  1,
	})
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:   models.DecisionApprove,
		TermsOfUse: "changed my mind",
		Version:    2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestRespondRoyaltyRange(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	for _, royalty := range []float64{-0.1, 100.1} {
		_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
			Decision:          models.DecisionApprove,
			TermsOfUse:        "terms",
			RoyaltyPercentage: floatPtr(royalty),
			Version:           1,
		})
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.KindValidation))
	}
}

func TestResponseDateSetOnlyOnce(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	first, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(20),
		Version:           1,
	})
	require.NoError(t, err)
	require.NotNil(t, first.ResponseDate)
	firstStamp := *first.ResponseDate

	time.Sleep(5 * time.Millisecond)

	second, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(15),
		Version:           2,
	})
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *second.ResponseDate)
}

func TestCounterDuringNegotiation(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(25),
		Version:           1,
	})
	require.NoError(t, err)

	countered, err := f.service.Counter(context.Background(), clearance.ID, f.musician, &CounterRequest{
		CounterProposal: "15% and a feature credit",
		Version:         2,
	})
	require.NoError(t, err)

	assert.Equal(t, models.ClearanceStatusNegotiating, countered.Status)
	assert.Equal(t, "15% and a feature credit", countered.CounterProposal)
	require.NotNil(t, countered.CounterDate)
}

func TestCounterReopensApprovedRequest(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:   models.DecisionApprove,
		TermsOfUse: "30% royalty",
		Version:    1,
	})
	require.NoError(t, err)

	countered, err := f.service.Counter(context.Background(), clearance.ID, f.musician, &CounterRequest{
		CounterProposal: "30% is too steep, offering 18%",
		Version:         2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClearanceStatusNegotiating, countered.Status)
}

func TestCounterOnPendingFails(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Counter(context.Background(), clearance.ID, f.musician, &CounterRequest{
		CounterProposal: "proposal",
		Version:         1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestCounterIsRequesterOnly(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(25),
		Version:           1,
	})
	require.NoError(t, err)

	_, err = f.service.Counter(context.Background(), clearance.ID, f.holder, &CounterRequest{
		CounterProposal: "proposal",
		Version:         2,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestAcceptFinalizes(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:   models.DecisionApprove,
		TermsOfUse: "non-exclusive",
		Version:    1,
	})
	require.NoError(t, err)

	finalized, err := f.service.Accept(context.Background(), clearance.ID, f.musician, &AcceptRequest{Version: 2})
	require.NoError(t, err)

	assert.Equal(t, models.ClearanceStatusFinalized, finalized.Status)
	require.NotNil(t, finalized.FinalizedDate)
	assert.False(t, finalized.FinalizedDate.Before(*finalized.ResponseDate))
	assert.False(t, finalized.ResponseDate.Before(finalized.RequestDate))
}

func TestAcceptRequiresApprovedStatus(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Accept(context.Background(), clearance.ID, f.musician, &AcceptRequest{Version: 1})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestFinalizedIsAbsorbing(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:   models.DecisionApprove,
		TermsOfUse: "terms",
		Version:    1,
	})
	require.NoError(t, err)
	_, err = f.service.Accept(context.Background(), clearance.ID, f.musician, &AcceptRequest{Version: 2})
	require.NoError(t, err)

	_, err = f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision: models.DecisionReject,
		Notes:    "too late",
		Version:  3,
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))

	_, err = f.service.Counter(context.Background(), clearance.ID, f.musician, &CounterRequest{
		CounterProposal: "too late",
		Version:         3,
	})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))

	_, err = f.service.Accept(context.Background(), clearance.ID, f.musician, &AcceptRequest{Version: 3})
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidTransition))
}

func TestStaleVersionIsConflictNotRetry(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(25),
		Version:           1,
	})
	require.NoError(t, err)

	// A second response still holding version 1 must lose.
	_, err = f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		RoyaltyPercentage: floatPtr(30),
		Version:           1,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConcurrentModification))
}

func TestConcurrentRespondsExactlyOneWins(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	const attempts = 6
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
				Decision:   models.DecisionApprove,
				TermsOfUse: "terms",
				Version:    1,
			})
		}(i)
	}
	wg.Wait()

	var wins, conflicts, transitions int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case apperrors.Is(err, apperrors.KindConcurrentModification):
			conflicts++
		case apperrors.Is(err, apperrors.KindInvalidTransition):
			// Losers that re-read after the winner committed see the
			// approved status.
			transitions++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, attempts-1, conflicts+transitions)
}

func TestGetIsPartyOrAdminOnly(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	_, err := f.service.Get(context.Background(), clearance.ID, f.musician, models.UserTypeMusician)
	assert.NoError(t, err)

	_, err = f.service.Get(context.Background(), clearance.ID, f.holder, models.UserTypeRightsHolder)
	assert.NoError(t, err)

	_, err = f.service.Get(context.Background(), clearance.ID, uuid.New(), models.UserTypeAdmin)
	assert.NoError(t, err)

	_, err = f.service.Get(context.Background(), clearance.ID, uuid.New(), models.UserTypeMusician)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindUnauthorized))
}

func TestStatistics(t *testing.T) {
	f := newClearanceFixture(t)

	first := f.create(t)
	_, err := f.service.Respond(context.Background(), first.ID, f.holder, &RespondRequest{
		Decision: models.DecisionReject,
		Notes:    "no",
		Version:  1,
	})
	require.NoError(t, err)

	f.create(t)

	stats, err := f.service.Statistics(context.Background(), f.musician, models.UserTypeMusician)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.PendingRequests)
	assert.Equal(t, int64(1), stats.RejectedRequests)
	assert.Equal(t, int64(0), stats.FinalizedRequests)
}

// Full negotiation walk: request, counter offers both ways, approval,
// acceptance.
func TestNegotiationEndToEnd(t *testing.T) {
	f := newClearanceFixture(t)
	clearance := f.create(t)

	negotiating, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionNegotiate,
		TermsOfUse:        "exclusive license only",
		RoyaltyPercentage: floatPtr(40),
		Version:           1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClearanceStatusNegotiating, negotiating.Status)

	countered, err := f.service.Counter(context.Background(), clearance.ID, f.musician, &CounterRequest{
		CounterProposal: "non-exclusive at 20%",
		Version:         2,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), countered.Version)

	approved, err := f.service.Respond(context.Background(), clearance.ID, f.holder, &RespondRequest{
		Decision:          models.DecisionApprove,
		TermsOfUse:        "non-exclusive, 25%, credit required",
		RoyaltyPercentage: floatPtr(25),
		Version:           3,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ClearanceStatusApproved, approved.Status)

	finalized, err := f.service.Accept(context.Background(), clearance.ID, f.musician, &AcceptRequest{Version: 4})
	require.NoError(t, err)

	assert.Equal(t, models.ClearanceStatusFinalized, finalized.Status)
	assert.Equal(t, int64(5), finalized.Version)
	assert.Equal(t, 25.0, *finalized.RoyaltyPercentage)
	require.NotNil(t, finalized.FinalizedDate)
	assert.False(t, finalized.FinalizedDate.Before(*finalized.CounterDate))
}
