package diagnostics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/scopekit/errors"
)

// codeLogDisabled is returned when the container was built without a
// resolution log.
const codeLogDisabled apperrors.ErrorCode = "RESOLUTION_LOG_DISABLED"

// DataResponse is the success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries counts for list responses.
type Meta struct {
	Total int `json:"total"`
}

// RespondWithError derives the status and body from err when it is a
// container error and sends a generic 500 otherwise.
func RespondWithError(c *gin.Context, err error) {
	if e, ok := apperrors.AsError(err); ok {
		c.JSON(apperrors.HTTPStatus(e.Code), e.ToResponse())
		return
	}
	c.JSON(http.StatusInternalServerError, apperrors.ErrorResponse{
		Error: apperrors.ErrorBody{Code: "INTERNAL", Message: err.Error()},
	})
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondList sends a 200 response wrapping data with its length.
func RespondList(c *gin.Context, data any, total int) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: &Meta{Total: total}})
}
