package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/service"
	"github.com/healthcare-bi/backend/internal/source"
)

type IngestRequest struct {
	Dataset  string `json:"dataset" validate:"required,oneof=clinical building all"`
	DaysBack int    `json:"days_back" validate:"omitempty,min=1,max=3650"`
}

type ResolveRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	LegalName string `json:"legal_name" validate:"max=300"`
}

// @Summary Run ingestion
// @Description Pulls orders from the partner APIs and upserts them
// @Tags admin
// @Accept json
// @Produce json
// @Param body body IngestRequest true "dataset and window"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/ingest [post]
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	daysBack := req.DaysBack
	if daysBack == 0 {
		daysBack = h.DaysBack
	}

	datasets := []models.Dataset{models.Dataset(req.Dataset)}
	if req.Dataset == "all" {
		datasets = []models.Dataset{models.DatasetClinical, models.DatasetBuilding}
	}

	results := map[string]service.IngestSummary{}
	for _, dataset := range datasets {
		summary, err := h.Ingester.Run(c.Request.Context(), dataset, daysBack)
		if err != nil {
			h.Logger.Error().Err(err).Str("dataset", string(dataset)).Msg("ingestion failed")
			status := http.StatusInternalServerError
			code := "INGEST_ERROR"
			if errors.Is(err, source.ErrUnauthorized) {
				status = http.StatusBadGateway
				code = "SOURCE_UNAUTHORIZED"
			}
			writeError(c, status, code, "Ingestion failed for "+string(dataset), err.Error())
			return
		}
		results[string(dataset)] = summary
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// @Summary Synchronize companies
// @Description Reconciles companies with the names found on building orders
// @Tags admin
// @Produce json
// @Success 200 {object} identity.SyncSummary
// @Router /api/companies/sync [post]
func (h *Handler) SyncCompanies(c *gin.Context) {
	summary, err := h.Sync.Run(c.Request.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("company sync failed")
		writeError(c, http.StatusInternalServerError, "SYNC_ERROR", "Company synchronization failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, summary)
}

// @Summary Resolve a company label
// @Description Returns the company id for a display name, creating the company when needed
// @Tags admin
// @Accept json
// @Produce json
// @Param body body ResolveRequest true "labels"
// @Success 200 {object} map[string]any
// @Failure 422 {object} map[string]any
// @Router /api/companies/resolve [post]
func (h *Handler) ResolveCompany(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	res := h.Resolver.ResolveLegal(c.Request.Context(), req.Name, req.LegalName)
	if !res.OK() {
		writeError(c, http.StatusUnprocessableEntity, "NO_MATCH", "Company could not be resolved", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"company_id": res.ID, "outcome": res.Outcome.String()})
}
