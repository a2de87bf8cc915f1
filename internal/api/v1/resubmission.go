package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shiftledger/shiftledger/internal/api/dto"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/service"
)

type ResubmissionHandler struct {
	service service.ResubmissionService
	log     *logger.Logger
}

func NewResubmissionHandler(service service.ResubmissionService, log *logger.Logger) *ResubmissionHandler {
	return &ResubmissionHandler{service: service, log: log}
}

// Track records one observed document submission and reports how it
// classified against the tracked state
func (h *ResubmissionHandler) Track(c *gin.Context) {
	var req dto.TrackResubmissionRequest
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

	incoming, err := req.ToIncoming()
	if err != nil {
		abortWithError(c, err)
		return
	}

	state, record, err := h.service.Track(c.Request.Context(), incoming)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TrackResubmissionResponse{
		State:  state,
		Record: record,
	})
}
