// internal/services/clearance_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/repository"
)

// ClearanceService owns the negotiation lifecycle of clearance
// requests. Every mutation re-reads the stored record, evaluates the
// role and status guards against it, and writes through the repository
// conditioned on the caller's expected version. The service never
// auto-retries a lost write.
type ClearanceService struct {
	repo                repository.ClearanceRepository
	works               repository.WorkRepository
	notificationService *NotificationService
}

type CreateClearanceRequest struct {
	DerivativeWorkID uuid.UUID `json:"derivative_work_id" validate:"required"`
	OriginalWorkID   uuid.UUID `json:"original_work_id" validate:"required"`
	UsageDescription string    `json:"usage_description" validate:"required"`
	MatchConfidence  *float64  `json:"match_confidence,omitempty"`
}

type RespondRequest struct {
	Decision          models.ResponseDecision `json:"decision" validate:"required"`
	TermsOfUse        string                  `json:"terms_of_use,omitempty"`
	RoyaltyPercentage *float64                `json:"royalty_percentage,omitempty"`
	Notes             string                  `json:"notes,omitempty"`
	Version           int64                   `json:"version" validate:"required,min=1"`
}

type CounterRequest struct {
	CounterProposal string `json:"counter_proposal" validate:"required"`
	Version         int64  `json:"version" validate:"required,min=1"`
}

type AcceptRequest struct {
	Version int64 `json:"version" validate:"required,min=1"`
}

type ClearanceStatistics struct {
	TotalRequests       int64 `json:"total_requests"`
	PendingRequests     int64 `json:"pending_requests"`
	ApprovedRequests    int64 `json:"approved_requests"`
	RejectedRequests    int64 `json:"rejected_requests"`
	NegotiatingRequests int64 `json:"negotiating_requests"`
	FinalizedRequests   int64 `json:"finalized_requests"`
}

func NewClearanceService(repo repository.ClearanceRepository, works repository.WorkRepository, notificationService *NotificationService) *ClearanceService {
	return &ClearanceService{
		repo:                repo,
		works:               works,
		notificationService: notificationService,
	}
}

// Create opens a negotiation in pending state. The rights holder is
// resolved from the original work's owner; a requester can never open
// a negotiation with themselves.
func (s *ClearanceService) Create(ctx context.Context, requesterID uuid.UUID, req *CreateClearanceRequest) (*models.ClearanceRequest, error) {
	if req.UsageDescription == "" {
		return nil, apperrors.Validation("usage_description", "usage description is required")
	}
	if req.MatchConfidence != nil && (*req.MatchConfidence < 0 || *req.MatchConfidence > 1) {
		return nil, apperrors.Validation("match_confidence", "match confidence must be between 0 and 1")
	}

	derivative, err := s.works.GetDerivative(ctx, req.DerivativeWorkID)
	if err != nil {
		return nil, err
	}
	if derivative.OwnerID != requesterID {
		return nil, apperrors.Unauthorized("only the derivative work's owner may request clearance")
	}

	original, err := s.works.GetOriginal(ctx, req.OriginalWorkID)
	if err != nil {
		return nil, err
	}
	if original.OwnerID == uuid.Nil {
		return nil, apperrors.Validation("original_work_id", "original work has no resolvable rights holder")
	}
	if original.OwnerID == requesterID {
		return nil, apperrors.Validation("original_work_id", "requester and rights holder must be different parties")
	}

	clearance := &models.ClearanceRequest{
		DerivativeWorkID: derivative.ID,
		OriginalWorkID:   original.ID,
		RequesterID:      requesterID,
		RightsHolderID:   original.OwnerID,
		Status:           models.ClearanceStatusPending,
		UsageDescription: req.UsageDescription,
		MatchConfidence:  req.MatchConfidence,
		RequestDate:      time.Now(),
	}

	if err := s.repo.Create(ctx, clearance); err != nil {
		return nil, err
	}

	go s.notifyRequestCreated(clearance)

	return clearance, nil
}

// Respond is the rights holder's move: approve with terms, reject with
// notes, or open/continue negotiation. Approved requests may still be
// pulled back into negotiation until the requester accepts.
func (s *ClearanceService) Respond(ctx context.Context, requestID, callerID uuid.UUID, req *RespondRequest) (*models.ClearanceRequest, error) {
	clearance, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if clearance.RightsHolderID != callerID {
		return nil, apperrors.Unauthorized("only the rights holder may respond to this request")
	}

	var target models.ClearanceStatus
	switch req.Decision {
	case models.DecisionApprove:
		target = models.ClearanceStatusApproved
	case models.DecisionReject:
		target = models.ClearanceStatusRejected
	case models.DecisionNegotiate:
		target = models.ClearanceStatusNegotiating
	default:
		return nil, apperrors.Validation("decision", "decision must be approve, reject, or negotiate")
	}

	eligible := clearance.Status == models.ClearanceStatusPending ||
		clearance.Status == models.ClearanceStatusNegotiating ||
		// Terms already on the table may still be revised before the
		// requester accepts.
		(clearance.Status == models.ClearanceStatusApproved && req.Decision == models.DecisionNegotiate)
	if !eligible || !clearance.CanTransition(target) {
		return nil, apperrors.InvalidTransition(string(clearance.Status), string(target))
	}

	if req.RoyaltyPercentage != nil && (*req.RoyaltyPercentage < 0 || *req.RoyaltyPercentage > 100) {
		return nil, apperrors.Validation("royalty_percentage", "royalty percentage must be between 0 and 100")
	}

	switch req.Decision {
	case models.DecisionApprove:
		if req.TermsOfUse == "" {
			return nil, apperrors.Validation("terms_of_use", "terms of use are required for approval")
		}
	case models.DecisionReject:
		if req.Notes == "" {
			return nil, apperrors.Validation("notes", "notes are required for rejection")
		}
	case models.DecisionNegotiate:
		if req.TermsOfUse == "" && req.RoyaltyPercentage == nil {
			return nil, apperrors.Validation("terms_of_use", "negotiation requires proposed terms or a royalty percentage")
		}
	}

	clearance.Status = target
	if req.TermsOfUse != "" {
		clearance.TermsOfUse = req.TermsOfUse
	}
	if req.RoyaltyPercentage != nil {
		clearance.RoyaltyPercentage = req.RoyaltyPercentage
	}
	if req.Notes != "" {
		clearance.Notes = req.Notes
	}
	if clearance.ResponseDate == nil {
		now := time.Now()
		clearance.ResponseDate = &now
	}

	if err := s.repo.Update(ctx, clearance, req.Version); err != nil {
		return nil, err
	}

	go s.notifyResponded(clearance)

	return clearance, nil
}

// Counter is the requester's move during negotiation: record a counter
// proposal and keep (or pull the request back to) negotiating.
func (s *ClearanceService) Counter(ctx context.Context, requestID, callerID uuid.UUID, req *CounterRequest) (*models.ClearanceRequest, error) {
	clearance, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if clearance.RequesterID != callerID {
		return nil, apperrors.Unauthorized("only the requester may counter on this request")
	}

	if clearance.Status != models.ClearanceStatusNegotiating &&
		clearance.Status != models.ClearanceStatusApproved {
		return nil, apperrors.InvalidTransition(string(clearance.Status), string(models.ClearanceStatusNegotiating))
	}

	if req.CounterProposal == "" {
		return nil, apperrors.Validation("counter_proposal", "counter proposal is required")
	}

	clearance.Status = models.ClearanceStatusNegotiating
	clearance.CounterProposal = req.CounterProposal
	if clearance.CounterDate == nil {
		now := time.Now()
		clearance.CounterDate = &now
	}

	if err := s.repo.Update(ctx, clearance, req.Version); err != nil {
		return nil, err
	}

	go s.notifyCountered(clearance)

	return clearance, nil
}

// Accept is the requester's terminal move: take the approved terms and
// finalize the clearance.
func (s *ClearanceService) Accept(ctx context.Context, requestID, callerID uuid.UUID, req *AcceptRequest) (*models.ClearanceRequest, error) {
	clearance, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if clearance.RequesterID != callerID {
		return nil, apperrors.Unauthorized("only the requester may accept terms on this request")
	}

	if clearance.Status != models.ClearanceStatusApproved {
		return nil, apperrors.InvalidTransition(string(clearance.Status), string(models.ClearanceStatusFinalized))
	}

	now := time.Now()
	clearance.Status = models.ClearanceStatusFinalized
	clearance.FinalizedDate = &now

	if err := s.repo.Update(ctx, clearance, req.Version); err != nil {
		return nil, err
	}

	go s.notifyFinalized(clearance)

	return clearance, nil
}

// Get returns a request to one of its parties. Admins may read any
// request.
func (s *ClearanceService) Get(ctx context.Context, requestID, callerID uuid.UUID, callerType models.UserType) (*models.ClearanceRequest, error) {
	clearance, err := s.repo.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if clearance.RequesterID != callerID && clearance.RightsHolderID != callerID &&
		callerType != models.UserTypeAdmin {
		return nil, apperrors.Unauthorized("not a party to this clearance request")
	}

	return clearance, nil
}

func (s *ClearanceService) ListForParty(ctx context.Context, callerID uuid.UUID, callerType models.UserType) ([]models.ClearanceRequest, error) {
	return s.repo.ListForParty(ctx, callerID, callerType)
}

// Statistics aggregates per-status counts for the caller's side of the
// negotiations. A pure read-side projection over the repository.
func (s *ClearanceService) Statistics(ctx context.Context, callerID uuid.UUID, callerType models.UserType) (*ClearanceStatistics, error) {
	counts, err := s.repo.CountByStatus(ctx, callerID, callerType)
	if err != nil {
		return nil, err
	}

	stats := &ClearanceStatistics{
		PendingRequests:     counts[models.ClearanceStatusPending],
		ApprovedRequests:    counts[models.ClearanceStatusApproved],
		RejectedRequests:    counts[models.ClearanceStatusRejected],
		NegotiatingRequests: counts[models.ClearanceStatusNegotiating],
		FinalizedRequests:   counts[models.ClearanceStatusFinalized],
	}
	stats.TotalRequests = stats.PendingRequests + stats.ApprovedRequests +
		stats.RejectedRequests + stats.NegotiatingRequests + stats.FinalizedRequests

	return stats, nil
}

// Notification methods

func (s *ClearanceService) notifyRequestCreated(clearance *models.ClearanceRequest) {
	if s.notificationService != nil {
		s.notificationService.SendClearanceRequestedNotification(clearance)
	}
}

func (s *ClearanceService) notifyResponded(clearance *models.ClearanceRequest) {
	if s.notificationService != nil {
		s.notificationService.SendClearanceRespondedNotification(clearance)
	}
}

func (s *ClearanceService) notifyCountered(clearance *models.ClearanceRequest) {
	if s.notificationService != nil {
		s.notificationService.SendCounterProposalNotification(clearance)
	}
}

func (s *ClearanceService) notifyFinalized(clearance *models.ClearanceRequest) {
	if s.notificationService != nil {
		s.notificationService.SendClearanceFinalizedNotification(clearance)
	}
}
