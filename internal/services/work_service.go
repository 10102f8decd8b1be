// internal/services/work_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brydge/brydge-backend/internal/apperrors"
	"github.com/brydge/brydge-backend/internal/fingerprint"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/utils"
)

// WorkService manages the audio catalog: rights holders upload
// original works, musicians upload derivative works. Uploads are
// fingerprinted on ingest so the matcher can see them.
type WorkService struct {
	db             *gorm.DB
	storageService *StorageService
	extractor      fingerprint.Extractor
}

type CreateWorkRequest struct {
	Title  string   `json:"title" validate:"required,max=255"`
	Artist string   `json:"artist" validate:"required,max=255"`
	Tags   []string `json:"tags,omitempty"`
}

func NewWorkService(db *gorm.DB, storageService *StorageService, extractor fingerprint.Extractor) *WorkService {
	return &WorkService{
		db:             db,
		storageService: storageService,
		extractor:      extractor,
	}
}

func (s *WorkService) CreateOriginalWork(ctx context.Context, ownerID uuid.UUID, req *CreateWorkRequest, file multipart.File, header *multipart.FileHeader) (*models.OriginalWork, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid work metadata", err)
	}

	owner, err := s.requireUser(ownerID, models.UserTypeRightsHolder)
	if err != nil {
		return nil, err
	}

	upload, extraction, err := s.ingestAudio(ctx, file, header, "originals")
	if err != nil {
		return nil, err
	}

	work := &models.OriginalWork{
		OwnerID:         owner.ID,
		Title:           req.Title,
		Artist:          req.Artist,
		FileKey:         upload.Key,
		FileSize:        upload.Size,
		MimeType:        upload.MimeType,
		Fingerprint:     extraction.Fingerprint,
		DurationSeconds: extraction.DurationSeconds,
		Tags:            req.Tags,
		UploadedAt:      time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(work).Error; err != nil {
		return nil, fmt.Errorf("failed to create original work: %w", err)
	}

	return work, nil
}

func (s *WorkService) CreateDerivativeWork(ctx context.Context, ownerID uuid.UUID, req *CreateWorkRequest, file multipart.File, header *multipart.FileHeader) (*models.DerivativeWork, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid work metadata", err)
	}

	owner, err := s.requireUser(ownerID, models.UserTypeMusician)
	if err != nil {
		return nil, err
	}

	upload, extraction, err := s.ingestAudio(ctx, file, header, "derivatives")
	if err != nil {
		return nil, err
	}

	work := &models.DerivativeWork{
		OwnerID:         owner.ID,
		Title:           req.Title,
		Artist:          req.Artist,
		FileKey:         upload.Key,
		FileSize:        upload.Size,
		MimeType:        upload.MimeType,
		Fingerprint:     extraction.Fingerprint,
		DurationSeconds: extraction.DurationSeconds,
		Tags:            req.Tags,
		UploadedAt:      time.Now(),
	}

	if err := s.db.WithContext(ctx).Create(work).Error; err != nil {
		return nil, fmt.Errorf("failed to create derivative work: %w", err)
	}

	return work, nil
}

func (s *WorkService) GetOriginalWork(ctx context.Context, id uuid.UUID) (*models.OriginalWork, error) {
	var work models.OriginalWork
	if err := s.db.WithContext(ctx).Preload("Owner").First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("original work")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &work, nil
}

func (s *WorkService) GetDerivativeWork(ctx context.Context, id uuid.UUID) (*models.DerivativeWork, error) {
	var work models.DerivativeWork
	if err := s.db.WithContext(ctx).Preload("Owner").First(&work, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("derivative work")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &work, nil
}

func (s *WorkService) ListOriginalWorks(ctx context.Context, params utils.PaginationParams) ([]models.OriginalWork, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.OriginalWork{}).Preload("Owner")

	if params.Search != "" {
		search := "%" + params.Search + "%"
		query = query.Where("title ILIKE ? OR artist ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count original works: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "artist", "uploaded_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var works []models.OriginalWork
	if err := query.Find(&works).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch original works: %w", err)
	}

	return works, total, nil
}

func (s *WorkService) ListDerivativeWorks(ctx context.Context, ownerID uuid.UUID, params utils.PaginationParams) ([]models.DerivativeWork, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.DerivativeWork{}).
		Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count derivative works: %w", err)
	}

	allowedSortFields := []string{"created_at", "title", "uploaded_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var works []models.DerivativeWork
	if err := query.Find(&works).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch derivative works: %w", err)
	}

	return works, total, nil
}

func (s *WorkService) requireUser(id uuid.UUID, userType models.UserType) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, apperrors.NotFound("user")
	}
	if user.Status != models.UserStatusActive {
		return nil, apperrors.Unauthorized("account is not active")
	}
	if user.UserType != userType && user.UserType != models.UserTypeAdmin {
		return nil, apperrors.Unauthorized(fmt.Sprintf("only %s accounts may upload this kind of work", userType))
	}
	return &user, nil
}

// ingestAudio stores the upload and fingerprints it in one pass. The
// fingerprint failing is not fatal to the upload: the work is kept
// without one and stays invisible to the matcher until re-processed.
func (s *WorkService) ingestAudio(ctx context.Context, file multipart.File, header *multipart.FileHeader, folder string) (*UploadResult, *fingerprint.Extraction, error) {
	if err := s.storageService.ValidateAudio(file); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindValidation, "audio upload rejected", err)
	}

	upload, err := s.storageService.UploadFile(file, header, UploadOptions{
		Folder:       folder,
		MaxSize:      50 * 1024 * 1024,
		AllowedTypes: []string{".mp3", ".wav", ".flac", ".ogg", ".m4a", ".aiff"},
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindValidation, "audio upload rejected", err)
	}

	if _, err := file.Seek(0, 0); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindExtractionFailed, "failed to rewind audio payload", err)
	}

	extraction, err := s.extractor.Extract(ctx, file)
	if err != nil {
		extraction = &fingerprint.Extraction{}
	}

	return upload, extraction, nil
}
