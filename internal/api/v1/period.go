package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shiftledger/shiftledger/internal/api/dto"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/service"
)

type PeriodHandler struct {
	service service.PeriodService
	log     *logger.Logger
}

func NewPeriodHandler(service service.PeriodService, log *logger.Logger) *PeriodHandler {
	return &PeriodHandler{service: service, log: log}
}

// Generate creates the billing periods of a fiscal year. Idempotent: an
// already-generated year reports zero created rows.
func (h *PeriodHandler) Generate(c *gin.Context) {
	var req dto.GeneratePeriodsRequest
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

	start, err := req.ParseStart()
	if err != nil {
		abortWithError(c, err)
		return
	}

	result, err := h.service.GeneratePeriods(c.Request.Context(), start)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GeneratePeriodsResponse{
		FiscalYear: result.FiscalYear,
		Created:    result.Created,
		Periods:    result.Periods,
	})
}

// List returns the periods of one fiscal year
func (h *PeriodHandler) List(c *gin.Context) {
	fiscalYear, err := strconv.Atoi(c.Query("fiscal_year"))
	if err != nil {
		abortWithError(c, ierr.NewError("invalid fiscal year").
			WithHint("fiscal_year must be a four digit year").
			Mark(ierr.ErrValidation))
		return
	}

	periods, err := h.service.ListPeriods(c.Request.Context(), fiscalYear)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListPeriodsResponse{
		FiscalYear: fiscalYear,
		Periods:    periods,
	})
}

// Resolve maps a calendar date to its period id
func (h *PeriodHandler) Resolve(c *gin.Context) {
	raw := c.Query("date")
	date, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		abortWithError(c, ierr.NewError("invalid date").
			WithHintf("date %q is not a valid YYYY-MM-DD date", raw).
			Mark(ierr.ErrValidation))
		return
	}

	periodID, err := h.service.ResolvePeriod(c.Request.Context(), date)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ResolvePeriodResponse{
		Date:     raw,
		PeriodID: periodID,
	})
}
