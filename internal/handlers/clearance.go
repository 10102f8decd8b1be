// internal/handlers/clearance.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brydge/brydge-backend/internal/i18n"
	"github.com/brydge/brydge-backend/internal/services"
	"github.com/brydge/brydge-backend/internal/utils"
)

type ClearanceHandler struct {
	clearanceService *services.ClearanceService
	matchingService  *services.MatchingService
}

func NewClearanceHandler(clearanceService *services.ClearanceService, matchingService *services.MatchingService) *ClearanceHandler {
	return &ClearanceHandler{
		clearanceService: clearanceService,
		matchingService:  matchingService,
	}
}

// POST /clearances
func (h *ClearanceHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	var req services.CreateClearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	clearance, err := h.clearanceService.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyClearanceCreated),
		"clearance": clearance,
	})
}

// POST /clearances/auto
func (h *ClearanceHandler) CreateWithMatching(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	var req services.CreateWithMatchingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	clearance, err := h.matchingService.CreateWithMatching(c.Request.Context(), callerID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyClearanceCreated),
		"clearance": clearance,
	})
}

// GET /clearances
func (h *ClearanceHandler) List(c *gin.Context) {
	callerID, callerType, ok := currentCaller(c)
	if !ok {
		return
	}

	clearances, err := h.clearanceService.ListForParty(c.Request.Context(), callerID, callerType)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"clearances": clearances,
	})
}

// GET /clearances/:id
func (h *ClearanceHandler) Get(c *gin.Context) {
	callerID, callerType, ok := currentCaller(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid clearance request ID", nil)
		return
	}

	clearance, err := h.clearanceService.Get(c.Request.Context(), requestID, callerID, callerType)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, clearance)
}

// POST /clearances/:id/respond
func (h *ClearanceHandler) Respond(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid clearance request ID", nil)
		return
	}

	var req services.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	clearance, err := h.clearanceService.Respond(c.Request.Context(), requestID, callerID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyClearanceResponded),
		"clearance": clearance,
	})
}

// POST /clearances/:id/counter
func (h *ClearanceHandler) Counter(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid clearance request ID", nil)
		return
	}

	var req services.CounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	clearance, err := h.clearanceService.Counter(c.Request.Context(), requestID, callerID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyClearanceCountered),
		"clearance": clearance,
	})
}

// POST /clearances/:id/accept
func (h *ClearanceHandler) Accept(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid clearance request ID", nil)
		return
	}

	var req services.AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	// Validate request
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	clearance, err := h.clearanceService.Accept(c.Request.Context(), requestID, callerID, &req)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyClearanceFinalized),
		"clearance": clearance,
	})
}

// GET /clearances/statistics
func (h *ClearanceHandler) Statistics(c *gin.Context) {
	callerID, callerType, ok := currentCaller(c)
	if !ok {
		return
	}

	stats, err := h.clearanceService.Statistics(c.Request.Context(), callerID, callerType)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, stats)
}

// GET /works/derivatives/:id/candidates
func (h *ClearanceHandler) Candidates(c *gin.Context) {
	callerID, _, ok := currentCaller(c)
	if !ok {
		return
	}

	derivativeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid derivative work ID", nil)
		return
	}

	candidates, err := h.matchingService.Candidates(c.Request.Context(), derivativeID, callerID)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"candidates": candidates,
	})
}
