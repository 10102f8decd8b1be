// internal/services/matching_service.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/matching"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/repository"
)

// MatchingService feeds the negotiation flow: it ranks the original
// works a submitted derivative most likely samples and can open a
// clearance request against the best match in one step.
type MatchingService struct {
	works            repository.WorkRepository
	matcher          *matching.Matcher
	clearanceService *ClearanceService
}

// CandidateMatch pairs a ranked confidence with the original work it
// belongs to.
type CandidateMatch struct {
	OriginalWork models.OriginalWork `json:"original_work"`
	Confidence   float64             `json:"confidence"`
}

type CreateWithMatchingRequest struct {
	DerivativeWorkID uuid.UUID `json:"derivative_work_id" validate:"required"`
	UsageDescription string    `json:"usage_description" validate:"required"`
}

func NewMatchingService(works repository.WorkRepository, matcher *matching.Matcher, clearanceService *ClearanceService) *MatchingService {
	return &MatchingService{
		works:            works,
		matcher:          matcher,
		clearanceService: clearanceService,
	}
}

// Candidates returns the ranked probable originals for a derivative
// work. An empty slice means nothing cleared the confidence threshold.
func (s *MatchingService) Candidates(ctx context.Context, derivativeID, callerID uuid.UUID) ([]CandidateMatch, error) {
	derivative, err := s.works.GetDerivative(ctx, derivativeID)
	if err != nil {
		return nil, err
	}
	if derivative.OwnerID != callerID {
		return nil, apperrors.Unauthorized("only the derivative work's owner may list candidates")
	}
	if derivative.Fingerprint == "" {
		return nil, apperrors.Validation("fingerprint", "derivative work has no fingerprint yet")
	}

	pool, err := s.candidatePool(ctx, callerID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matcher.Match(ctx, derivative.Fingerprint, pool.candidates)
	if err != nil {
		return nil, err
	}

	ranked := make([]CandidateMatch, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, CandidateMatch{
			OriginalWork: pool.byID[match.ID],
			Confidence:   match.Confidence,
		})
	}
	return ranked, nil
}

// CreateWithMatching opens a clearance request against the single best
// candidate above the threshold.
func (s *MatchingService) CreateWithMatching(ctx context.Context, requesterID uuid.UUID, req *CreateWithMatchingRequest) (*models.ClearanceRequest, error) {
	derivative, err := s.works.GetDerivative(ctx, req.DerivativeWorkID)
	if err != nil {
		return nil, err
	}
	if derivative.OwnerID != requesterID {
		return nil, apperrors.Unauthorized("only the derivative work's owner may request clearance")
	}
	if derivative.Fingerprint == "" {
		return nil, apperrors.Validation("fingerprint", "derivative work has no fingerprint yet")
	}

	pool, err := s.candidatePool(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	best, err := s.matcher.Best(ctx, derivative.Fingerprint, pool.candidates)
	if err != nil {
		return nil, err
	}
	if best == nil {
		return nil, apperrors.NotFound("original work matching the derivative")
	}

	return s.clearanceService.Create(ctx, requesterID, &CreateClearanceRequest{
		DerivativeWorkID: derivative.ID,
		OriginalWorkID:   best.ID,
		UsageDescription: req.UsageDescription,
		MatchConfidence:  &best.Confidence,
	})
}

// MatchFingerprint ranks the catalog against an already-extracted
// fingerprint token, for the public matching endpoint.
func (s *MatchingService) MatchFingerprint(ctx context.Context, fp string) ([]CandidateMatch, error) {
	pool, err := s.candidatePool(ctx, uuid.Nil)
	if err != nil {
		return nil, err
	}

	matches, err := s.matcher.Match(ctx, fp, pool.candidates)
	if err != nil {
		return nil, err
	}

	ranked := make([]CandidateMatch, 0, len(matches))
	for _, match := range matches {
		ranked = append(ranked, CandidateMatch{
			OriginalWork: pool.byID[match.ID],
			Confidence:   match.Confidence,
		})
	}
	return ranked, nil
}

type workPool struct {
	candidates []matching.Candidate
	byID       map[uuid.UUID]models.OriginalWork
}

// candidatePool loads every fingerprinted original except those owned
// by excludeOwner: a requester can never negotiate with themselves.
func (s *MatchingService) candidatePool(ctx context.Context, excludeOwner uuid.UUID) (*workPool, error) {
	originals, err := s.works.ListFingerprintedOriginals(ctx)
	if err != nil {
		return nil, err
	}

	pool := &workPool{byID: make(map[uuid.UUID]models.OriginalWork, len(originals))}
	for _, original := range originals {
		if excludeOwner != uuid.Nil && original.OwnerID == excludeOwner {
			continue
		}
		pool.candidates = append(pool.candidates, matching.Candidate{
			ID:          original.ID,
			Fingerprint: original.Fingerprint,
		})
		pool.byID[original.ID] = original
	}

	if len(pool.candidates) == 0 {
		return nil, apperrors.New(apperrors.KindNoCandidates, "no fingerprinted original works available")
	}

	return pool, nil
}
