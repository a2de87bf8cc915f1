package v1

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// abortWithError writes the standard error response with the status mapped
// from the error's category
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
