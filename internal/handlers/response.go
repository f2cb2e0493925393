package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/indecor/dreamspace-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError translates service-layer failures to HTTP. Missing and
// out-of-scope entities both arrive as ErrNotFound and both map to 404; this
// path never produces a 403.
func RespondServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.As(err, &vErr):
		RespondError(c, http.StatusBadRequest, "validation", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
