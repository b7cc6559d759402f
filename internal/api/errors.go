package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S-Corkum/search-gateway/internal/apierr"
	"github.com/S-Corkum/search-gateway/internal/model"
)

// writeError renders err as the §7 error envelope, classifying it through
// apierr if it isn't already a *apierr.Classified (an unexpected error is
// treated as an engine error rather than leaking internals).
func writeError(c *gin.Context, err error) {
	var classified *apierr.Classified
	if !errors.As(err, &classified) {
		classified = apierr.EngineError(err)
	}

	c.JSON(apierr.StatusCode(classified.Kind), model.Response{
		Error: &model.ErrorEnvelope{
			Code:    classified.Code,
			Message: classified.Message,
		},
	})
}

func writeBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, model.Response{
		Error: &model.ErrorEnvelope{Code: "BAD_REQUEST", Message: message},
	})
}
