package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/metrics"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
	"github.com/mamadbah2/harvestguard/internal/service/dashboard"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
	"github.com/mamadbah2/harvestguard/internal/service/progression"
)

// FarmService is implemented by the dashboard service.
type FarmService interface {
	Build(ctx context.Context, farmerID, lang string) (dashboard.Dashboard, error)
	UpsertFarmer(ctx context.Context, farmer models.Farmer) (models.Farmer, error)
	StartSession(ctx context.Context, farmerID string) (advisory.Session, error)
	RecordTransaction(ctx context.Context, farmerID string, in dashboard.TransactionInput) (models.Transaction, error)
	RemoveTransaction(ctx context.Context, farmerID string, txID uuid.UUID) error
	RegisterBatch(ctx context.Context, farmerID string, in dashboard.BatchInput) (models.CropBatch, error)
	RegionalRisk(ctx context.Context, locationID string) (dashboard.RegionalRisk, error)
}

// LossEstimator is implemented by spoilage.Estimator.
type LossEstimator interface {
	Estimate(batch models.CropBatch, weather models.WeatherSnapshot) (models.LossEstimate, error)
}

// APIHandler serves the JSON API.
type APIHandler struct {
	farms     FarmService
	estimator LossEstimator
	logger    *zap.Logger
}

// NewAPIHandler constructs the API handler.
func NewAPIHandler(farms FarmService, estimator LossEstimator, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{farms: farms, estimator: estimator, logger: logger}
}

type lossRequest struct {
	Batch   models.CropBatch       `json:"batch"`
	Weather models.WeatherSnapshot `json:"weather"`
}

type ledgerRequest struct {
	Transactions []models.Transaction `json:"transactions"`
}

type ledgerResponse struct {
	Summary models.LedgerSummary `json:"summary"`
	Tier    models.TierStatus    `json:"tier"`
}

// EvaluateAdvisory classifies a posted weather snapshot.
func (h *APIHandler) EvaluateAdvisory(c *gin.Context) {
	var snapshot models.WeatherSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		badRequest(c, err)
		return
	}

	adv, err := advisory.Classify(snapshot)
	if err != nil {
		metrics.IncEvaluatorError("advisory", dashboard.ErrorCode(err))
		writeError(c, h.logger, err)
		return
	}
	metrics.IncAdvisory(string(adv.Level))

	c.JSON(http.StatusOK, dashboard.AdvisoryView{
		Advisory: adv,
		Text:     presenter.Advisory(c.Query("lang"), adv),
	})
}

// EstimateLoss estimates hours to critical loss for a posted batch.
func (h *APIHandler) EstimateLoss(c *gin.Context) {
	var req lossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	est, err := h.estimator.Estimate(req.Batch, req.Weather)
	if err != nil {
		metrics.IncEvaluatorError("spoilage", dashboard.ErrorCode(err))
		writeError(c, h.logger, err)
		return
	}
	metrics.IncLossEstimate(string(est.RiskLevel))

	c.JSON(http.StatusOK, est)
}

// LedgerSummary summarizes posted transactions and derives the tier.
func (h *APIHandler) LedgerSummary(c *gin.Context) {
	var req ledgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	for _, tx := range req.Transactions {
		if err := tx.Validate(); err != nil {
			metrics.IncEvaluatorError("ledger", dashboard.ErrorCode(err))
			writeError(c, h.logger, err)
			return
		}
	}

	summary := progression.Summarize(req.Transactions)
	c.JSON(http.StatusOK, ledgerResponse{Summary: summary, Tier: progression.TierOf(summary.NetProfit)})
}

// UpsertFarmer registers or updates the farmer named in the path.
func (h *APIHandler) UpsertFarmer(c *gin.Context) {
	var farmer models.Farmer
	if err := c.ShouldBindJSON(&farmer); err != nil {
		badRequest(c, err)
		return
	}
	farmer.ID = c.Param("farmerID")

	saved, err := h.farms.UpsertFarmer(c.Request.Context(), farmer)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// StartSession resets critical alert suppression for the farmer.
func (h *APIHandler) StartSession(c *gin.Context) {
	sess, err := h.farms.StartSession(c.Request.Context(), c.Param("farmerID"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

// Dashboard returns the farmer dashboard.
func (h *APIHandler) Dashboard(c *gin.Context) {
	d, err := h.farms.Build(c.Request.Context(), c.Param("farmerID"), c.Query("lang"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// RecordTransaction appends a ledger entry.
func (h *APIHandler) RecordTransaction(c *gin.Context) {
	var in dashboard.TransactionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	tx, err := h.farms.RecordTransaction(c.Request.Context(), c.Param("farmerID"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}

// RemoveTransaction deletes a ledger entry.
func (h *APIHandler) RemoveTransaction(c *gin.Context) {
	txID, err := uuid.Parse(c.Param("txID"))
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.farms.RemoveTransaction(c.Request.Context(), c.Param("farmerID"), txID); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegisterBatch stores a crop batch.
func (h *APIHandler) RegisterBatch(c *gin.Context) {
	var in dashboard.BatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}

	batch, err := h.farms.RegisterBatch(c.Request.Context(), c.Param("farmerID"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// RegionalRisk returns anonymized risk pins for a district.
func (h *APIHandler) RegionalRisk(c *gin.Context) {
	risk, err := h.farms.RegionalRisk(c.Request.Context(), c.Param("locationID"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}
