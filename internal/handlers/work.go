// internal/handlers/work.go
package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/i18n"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/services"
	"github.com/brydge/brydge-backend/internal/utils"
)

type WorkHandler struct {
	workService *services.WorkService
}

func NewWorkHandler(workService *services.WorkService) *WorkHandler {
	return &WorkHandler{
		workService: workService,
	}
}

// POST /works/originals
func (h *WorkHandler) CreateOriginal(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	req, file, header, ok := bindWorkUpload(c, lang)
	if !ok {
		return
	}
	defer file.Close()

	work, err := h.workService.CreateOriginalWork(c.Request.Context(), callerID, req, file, header)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWorkUploaded),
		"work":    work,
	})
}

// POST /works/derivatives
func (h *WorkHandler) CreateDerivative(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	req, file, header, ok := bindWorkUpload(c, lang)
	if !ok {
		return
	}
	defer file.Close()

	work, err := h.workService.CreateDerivativeWork(c.Request.Context(), callerID, req, file, header)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyWorkUploaded),
		"work":    work,
	})
}

// GET /works/originals
func (h *WorkHandler) ListOriginals(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	works, total, err := h.workService.ListOriginalWorks(c.Request.Context(), params)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(works, total, params))
}

// GET /works/originals/:id
func (h *WorkHandler) GetOriginal(c *gin.Context) {
	workID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid work ID", nil)
		return
	}

	work, err := h.workService.GetOriginalWork(c.Request.Context(), workID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, work)
}

// GET /works/derivatives
func (h *WorkHandler) ListDerivatives(c *gin.Context) {
	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)

	works, total, err := h.workService.ListDerivativeWorks(c.Request.Context(), callerID, params)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(works, total, params))
}

// GET /works/derivatives/:id
func (h *WorkHandler) GetDerivative(c *gin.Context) {
	callerID, callerType, ok := currentCaller(c)
	if !ok {
		return
	}

	workID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid work ID", nil)
		return
	}

	work, err := h.workService.GetDerivativeWork(c.Request.Context(), workID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	// Derivative works are private to their owner.
	if work.OwnerID != callerID && callerType != models.UserTypeAdmin {
		utils.ForbiddenResponse(c, "")
		return
	}

	utils.SuccessResponse(c, work)
}

// bindWorkUpload reads the multipart metadata fields and the audio
// payload from the request.
func bindWorkUpload(c *gin.Context, lang string) (*services.CreateWorkRequest, multipart.File, *multipart.FileHeader, bool) {
	req := &services.CreateWorkRequest{
		Title:  c.PostForm("title"),
		Artist: c.PostForm("artist"),
	}
	if tags := c.PostForm("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if trimmed := strings.TrimSpace(tag); trimmed != "" {
				req.Tags = append(req.Tags, trimmed)
			}
		}
	}

	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return nil, nil, nil, false
	}

	return req, file, header, true
}
