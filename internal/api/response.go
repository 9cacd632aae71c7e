package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillquest/internal/engine"
)

// APIError is the body of every error response.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

func respondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondEngineError maps engine failures: rejected input is the caller's
// fault, everything else is ours and is logged.
func (h *Handler) respondEngineError(c *gin.Context, op string, err error) {
	if engine.IsValidation(err) {
		respondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	h.log.Error("request failed", "op", op, "path", c.FullPath(), "error", err)
	respondError(c, http.StatusInternalServerError, "internal", err)
}
