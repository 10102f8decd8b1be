// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/models"
)

// ClearanceRepository is the durable store behind the negotiation
// lifecycle. Every write is conditioned on the caller's expected
// version; a mismatch fails with the ConcurrentModification kind and
// leaves the stored record untouched. Implementations must honor
// context cancellation and surface infrastructure failures with the
// RepositoryUnavailable kind.
type ClearanceRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*models.ClearanceRequest, error)
	Create(ctx context.Context, req *models.ClearanceRequest) error
	// Update persists req if the stored version still equals
	// expectedVersion, atomically incrementing it.
	Update(ctx context.Context, req *models.ClearanceRequest, expectedVersion int64) error
	ListForParty(ctx context.Context, userID uuid.UUID, userType models.UserType) ([]models.ClearanceRequest, error)
	CountByStatus(ctx context.Context, userID uuid.UUID, userType models.UserType) (map[models.ClearanceStatus]int64, error)
}

// WorkRepository resolves the works a clearance negotiation is about
// and supplies the matcher's candidate pool.
type WorkRepository interface {
	GetOriginal(ctx context.Context, id uuid.UUID) (*models.OriginalWork, error)
	GetDerivative(ctx context.Context, id uuid.UUID) (*models.DerivativeWork, error)
	// ListFingerprintedOriginals returns every original work that has a
	// fingerprint, in stable insertion order.
	ListFingerprintedOriginals(ctx context.Context) ([]models.OriginalWork, error)
}
