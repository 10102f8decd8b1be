// internal/repository/memory.go
package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/models"
)

// MemoryClearanceRepository is an in-process store with the same
// optimistic-concurrency contract as the Postgres one. Tests and local
// development without a database run against it.
type MemoryClearanceRepository struct {
	mu       sync.Mutex
	requests map[uuid.UUID]models.ClearanceRequest
}

func NewMemoryClearanceRepository() *MemoryClearanceRepository {
	return &MemoryClearanceRepository{
		requests: make(map[uuid.UUID]models.ClearanceRequest),
	}
}

func (r *MemoryClearanceRepository) Get(ctx context.Context, id uuid.UUID) (*models.ClearanceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, apperrors.NotFound("clearance request")
	}
	copied := req
	return &copied, nil
}

func (r *MemoryClearanceRepository) Create(ctx context.Context, req *models.ClearanceRequest) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.Version = 1
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	r.requests[req.ID] = *req
	return nil
}

func (r *MemoryClearanceRepository) Update(ctx context.Context, req *models.ClearanceRequest, expectedVersion int64) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.requests[req.ID]
	if !ok {
		return apperrors.NotFound("clearance request")
	}
	if stored.Version != expectedVersion {
		return apperrors.New(apperrors.KindConcurrentModification,
			"clearance request was modified concurrently; re-read and retry")
	}

	req.Version = expectedVersion + 1
	req.UpdatedAt = time.Now()
	r.requests[req.ID] = *req
	return nil
}

func (r *MemoryClearanceRepository) ListForParty(ctx context.Context, userID uuid.UUID, userType models.UserType) ([]models.ClearanceRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var requests []models.ClearanceRequest
	for _, req := range r.requests {
		if partyMatches(&req, userID, userType) {
			requests = append(requests, req)
		}
	}

	sort.Slice(requests, func(i, j int) bool {
		return requests[i].RequestDate.After(requests[j].RequestDate)
	})
	return requests, nil
}

func (r *MemoryClearanceRepository) CountByStatus(ctx context.Context, userID uuid.UUID, userType models.UserType) (map[models.ClearanceStatus]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[models.ClearanceStatus]int64)
	for _, req := range r.requests {
		if partyMatches(&req, userID, userType) {
			counts[req.Status]++
		}
	}
	return counts, nil
}

func partyMatches(req *models.ClearanceRequest, userID uuid.UUID, userType models.UserType) bool {
	switch userType {
	case models.UserTypeMusician:
		return req.RequesterID == userID
	case models.UserTypeRightsHolder:
		return req.RightsHolderID == userID
	case models.UserTypeAdmin:
		return true
	}
	return false
}

// MemoryWorkRepository holds works in insertion order so matcher
// results stay deterministic.
type MemoryWorkRepository struct {
	mu          sync.Mutex
	originals   map[uuid.UUID]models.OriginalWork
	derivatives map[uuid.UUID]models.DerivativeWork
	order       []uuid.UUID
}

func NewMemoryWorkRepository() *MemoryWorkRepository {
	return &MemoryWorkRepository{
		originals:   make(map[uuid.UUID]models.OriginalWork),
		derivatives: make(map[uuid.UUID]models.DerivativeWork),
	}
}

func (r *MemoryWorkRepository) AddOriginal(work models.OriginalWork) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if work.ID == uuid.Nil {
		work.ID = uuid.New()
	}
	r.originals[work.ID] = work
	r.order = append(r.order, work.ID)
}

func (r *MemoryWorkRepository) AddDerivative(work models.DerivativeWork) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if work.ID == uuid.Nil {
		work.ID = uuid.New()
	}
	r.derivatives[work.ID] = work
}

func (r *MemoryWorkRepository) GetOriginal(ctx context.Context, id uuid.UUID) (*models.OriginalWork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	work, ok := r.originals[id]
	if !ok {
		return nil, apperrors.NotFound("original work")
	}
	copied := work
	return &copied, nil
}

func (r *MemoryWorkRepository) GetDerivative(ctx context.Context, id uuid.UUID) (*models.DerivativeWork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	work, ok := r.derivatives[id]
	if !ok {
		return nil, apperrors.NotFound("derivative work")
	}
	copied := work
	return &copied, nil
}

func (r *MemoryWorkRepository) ListFingerprintedOriginals(ctx context.Context) ([]models.OriginalWork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	works := make([]models.OriginalWork, 0, len(r.order))
	for _, id := range r.order {
		if work, ok := r.originals[id]; ok && work.Fingerprint != "" {
			works = append(works, work)
		}
	}
	return works, nil
}
