package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shiftledger/shiftledger/internal/api/dto"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/service"
)

type ETLHandler struct {
	ingestion service.IngestionService
	runs      service.BatchRunService
	log       *logger.Logger
}

func NewETLHandler(ingestion service.IngestionService, runs service.BatchRunService, log *logger.Logger) *ETLHandler {
	return &ETLHandler{ingestion: ingestion, runs: runs, log: log}
}

// Ingest runs the requested window for the requested regions synchronously
// and returns the per-region run summaries
func (h *ETLHandler) Ingest(c *gin.Context) {
	var req dto.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, ierr.WithError(err).
			WithHint("Invalid request payload").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		abortWithError(c, err)
		return
	}

	window, err := req.ParseWindow()
	if err != nil {
		abortWithError(c, err)
		return
	}

	runs, err := h.ingestion.Run(c.Request.Context(), req.Regions, window)
	if err != nil {
		// Failed runs still carry their counters; return both
		c.JSON(ierr.HTTPStatusFromErr(err), gin.H{
			"runs":  runs,
			"error": ierr.NewErrorResponse(err).Error,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// RefreshLedger replaces the stored ledger and mapping tables from the feed
func (h *ETLHandler) RefreshLedger(c *gin.Context) {
	result, err := h.ingestion.RefreshLedger(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetRun returns one batch run by id
func (h *ETLHandler) GetRun(c *gin.Context) {
	run, err := h.runs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns returns recent batch runs, newest first
func (h *ETLHandler) ListRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
