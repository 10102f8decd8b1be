// internal/handlers/fingerprint.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brydge/brydge-backend/internal/fingerprint"
	"github.com/brydge/brydge-backend/internal/i18n"
	"github.com/brydge/brydge-backend/internal/services"
	"github.com/brydge/brydge-backend/internal/utils"
)

type FingerprintHandler struct {
	extractor       fingerprint.Extractor
	matchingService *services.MatchingService
}

func NewFingerprintHandler(extractor fingerprint.Extractor, matchingService *services.MatchingService) *FingerprintHandler {
	return &FingerprintHandler{
		extractor:       extractor,
		matchingService: matchingService,
	}
}

// POST /fingerprints/extract
func (h *FingerprintHandler) Extract(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	// 50MB max, same ceiling the catalog enforces on ingest
	if header.Size > 50*1024*1024 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileTooLarge, "50"), nil)
		return
	}

	extraction, err := h.extractor.Extract(c.Request.Context(), file)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"fingerprint":      extraction.Fingerprint,
		"duration_seconds": extraction.DurationSeconds,
	})
}

// POST /fingerprints/compare
func (h *FingerprintHandler) Compare(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		FingerprintA string `json:"fingerprint_a" validate:"required"`
		FingerprintB string `json:"fingerprint_b" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	similarity, err := fingerprint.Compare(req.FingerprintA, req.FingerprintB)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"similarity": similarity,
	})
}

// POST /fingerprints/match
func (h *FingerprintHandler) Match(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		Fingerprint string `json:"fingerprint" validate:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	matches, err := h.matchingService.MatchFingerprint(c.Request.Context(), req.Fingerprint)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"matches": matches,
	})
}
