// internal/repository/gorm.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/models"
)

type GormClearanceRepository struct {
	db *gorm.DB
}

func NewGormClearanceRepository(db *gorm.DB) *GormClearanceRepository {
	return &GormClearanceRepository{db: db}
}

func (r *GormClearanceRepository) Get(ctx context.Context, id uuid.UUID) (*models.ClearanceRequest, error) {
	var req models.ClearanceRequest
	err := r.db.WithContext(ctx).
		Preload("DerivativeWork").Preload("OriginalWork").
		Preload("Requester").Preload("RightsHolder").
		First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("clearance request")
		}
		return nil, wrapDBError(ctx, err)
	}
	return &req, nil
}

func (r *GormClearanceRepository) Create(ctx context.Context, req *models.ClearanceRequest) error {
	req.Version = 1
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return wrapDBError(ctx, err)
	}
	return nil
}

func (r *GormClearanceRepository) Update(ctx context.Context, req *models.ClearanceRequest, expectedVersion int64) error {
	req.Version = expectedVersion + 1

	result := r.db.WithContext(ctx).
		Model(&models.ClearanceRequest{}).
		Where("id = ? AND version = ?", req.ID, expectedVersion).
		Select("status", "terms_of_use", "royalty_percentage", "counter_proposal",
			"notes", "response_date", "counter_date", "finalized_date", "version").
		Updates(req)
	if result.Error != nil {
		return wrapDBError(ctx, result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the row is gone or someone else won the write.
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.ClearanceRequest{}).
			Where("id = ?", req.ID).Count(&count).Error; err != nil {
			return wrapDBError(ctx, err)
		}
		if count == 0 {
			return apperrors.NotFound("clearance request")
		}
		return apperrors.New(apperrors.KindConcurrentModification,
			"clearance request was modified concurrently; re-read and retry")
	}

	return nil
}

func (r *GormClearanceRepository) ListForParty(ctx context.Context, userID uuid.UUID, userType models.UserType) ([]models.ClearanceRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("DerivativeWork").Preload("OriginalWork").
		Preload("Requester").Preload("RightsHolder").
		Order("request_date DESC")

	query = scopeToParty(query, userID, userType)

	var requests []models.ClearanceRequest
	if err := query.Find(&requests).Error; err != nil {
		return nil, wrapDBError(ctx, err)
	}
	return requests, nil
}

func (r *GormClearanceRepository) CountByStatus(ctx context.Context, userID uuid.UUID, userType models.UserType) (map[models.ClearanceStatus]int64, error) {
	var rows []struct {
		Status models.ClearanceStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).Model(&models.ClearanceRequest{}).
		Select("status, COUNT(*) as count").Group("status")
	query = scopeToParty(query, userID, userType)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, wrapDBError(ctx, err)
	}

	counts := make(map[models.ClearanceStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// scopeToParty narrows a clearance query to the requests the user is a
// party to: musicians see what they submitted, rights holders what was
// submitted against their works. Admins see everything; an unknown
// user type sees nothing.
func scopeToParty(query *gorm.DB, userID uuid.UUID, userType models.UserType) *gorm.DB {
	switch userType {
	case models.UserTypeMusician:
		return query.Where("requester_id = ?", userID)
	case models.UserTypeRightsHolder:
		return query.Where("rights_holder_id = ?", userID)
	case models.UserTypeAdmin:
		return query
	}
	return query.Where("1 = 0")
}

type GormWorkRepository struct {
	db *gorm.DB
}

func NewGormWorkRepository(db *gorm.DB) *GormWorkRepository {
	return &GormWorkRepository{db: db}
}

func (r *GormWorkRepository) GetOriginal(ctx context.Context, id uuid.UUID) (*models.OriginalWork, error) {
	var work models.OriginalWork
	if err := r.db.WithContext(ctx).Preload("Owner").First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("original work")
		}
		return nil, wrapDBError(ctx, err)
	}
	return &work, nil
}

func (r *GormWorkRepository) GetDerivative(ctx context.Context, id uuid.UUID) (*models.DerivativeWork, error) {
	var work models.DerivativeWork
	if err := r.db.WithContext(ctx).Preload("Owner").First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("derivative work")
		}
		return nil, wrapDBError(ctx, err)
	}
	return &work, nil
}

func (r *GormWorkRepository) ListFingerprintedOriginals(ctx context.Context) ([]models.OriginalWork, error) {
	var works []models.OriginalWork
	err := r.db.WithContext(ctx).
		Where("fingerprint IS NOT NULL AND fingerprint != ''").
		Order("created_at ASC").
		Find(&works).Error
	if err != nil {
		return nil, wrapDBError(ctx, err)
	}
	return works, nil
}

func wrapDBError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return apperrors.Wrap(apperrors.KindUnavailable, "repository timed out", err)
	}
	return apperrors.Wrap(apperrors.KindUnavailable, "repository error", err)
}
