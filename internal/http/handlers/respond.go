package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/expensehub/internal/apperr"
	"github.com/geocoder89/expensehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, APIError{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, apperr.InvalidInput.String(), message, details)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, apperr.Unauthorized.String(), message, nil)
}

// RespondAppError maps a classified error to its status and code. Internal
// failures are logged with their cause; the client only sees the safe message.
func RespondAppError(ctx *gin.Context, log *slog.Logger, err error) {
	kind := apperr.KindOf(err)

	if kind == apperr.Internal {
		log.ErrorContext(ctx.Request.Context(), "request_failed",
			"route", ctx.FullPath(),
			"err", err,
		)
	}

	RespondError(ctx, kind.Status(), kind.String(), apperr.Message(err), nil)
}
