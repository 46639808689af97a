package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/healthcare-bi/backend/internal/identity"
	"github.com/healthcare-bi/backend/internal/models"
	"github.com/healthcare-bi/backend/internal/reliability"
	"github.com/healthcare-bi/backend/internal/service"
)

// Store is the read side of the database the handlers need.
type Store interface {
	Ping(ctx context.Context) error
	ListOrders(ctx context.Context, dataset models.Dataset, f reliability.Filter, limit, offset int) ([]models.MaintenanceOrder, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	GetLatestRun(ctx context.Context, kind string) (models.Run, error)
}

type Ingester interface {
	Run(ctx context.Context, dataset models.Dataset, daysBack int) (service.IngestSummary, error)
}

type CompanySyncer interface {
	Run(ctx context.Context) (identity.SyncSummary, error)
}

type CompanyResolver interface {
	ResolveLegal(ctx context.Context, displayName, legalName string) identity.Result
}

type Handler struct {
	Store     Store
	Ingester  Ingester
	Sync      CompanySyncer
	Resolver  CompanyResolver
	Validator *validator.Validate
	Logger    zerolog.Logger
	DaysBack  int
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Param dataset query string false "clinical or building"
// @Param from query string false "opening date lower bound (YYYY-MM-DD)"
// @Param to query string false "opening date upper bound, inclusive (YYYY-MM-DD)"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/orders [get]
func (h *Handler) OrdersList(c *gin.Context) {
	dataset, filter, ok := bindScope(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.Store.ListOrders(c.Request.Context(), dataset, filter, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list orders", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary List companies
// @Tags companies
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/companies [get]
func (h *Handler) CompaniesList(c *gin.Context) {
	items, err := h.Store.ListCompanies(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list companies", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Param kind query string false "ingest_clinical, ingest_building or sync_companies"
// @Success 200 {object} models.Run
// @Failure 404 {object} map[string]any
// @Router /api/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Store.GetLatestRun(c.Request.Context(), c.Query("kind"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

// bindScope reads the dataset and dashboard filters shared by the list,
// reliability and dashboard endpoints. It writes the error response itself.
func bindScope(c *gin.Context) (models.Dataset, reliability.Filter, bool) {
	dataset := models.Dataset(c.DefaultQuery("dataset", string(models.DatasetClinical)))
	if !dataset.Valid() {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "dataset must be clinical or building", nil)
		return "", reliability.Filter{}, false
	}
	var filter reliability.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid filter", err.Error())
		return "", reliability.Filter{}, false
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "to must not be before from", nil)
		return "", reliability.Filter{}, false
	}
	return dataset, filter, true
}

func (h *Handler) loadOrders(c *gin.Context) ([]models.MaintenanceOrder, bool) {
	dataset, filter, ok := bindScope(c)
	if !ok {
		return nil, false
	}
	orders, err := h.Store.ListOrders(c.Request.Context(), dataset, filter, 0, 0)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load orders", err.Error())
		return nil, false
	}
	return orders, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
