package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindPermissionDenied:     http.StatusForbidden,
	domain.KindConnectionFailed:     http.StatusBadGateway,
	domain.KindDeviceUnavailable:    http.StatusServiceUnavailable,
	domain.KindCaptureFailed:        http.StatusInternalServerError,
	domain.KindScreenShareCancelled: http.StatusConflict,
	domain.KindPostProcessingFailed: http.StatusInternalServerError,
	domain.KindInvalidState:         http.StatusConflict,
	domain.KindBusy:                 http.StatusConflict,
	domain.KindNotSupported:         http.StatusUnprocessableEntity,
}

// renderError writes {"error", "kind"} with a status derived from the kind.
func renderError(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	log.Warn().
		Str("module", "adapters.http").
		Err(err).
		Str("kind", string(kind)).
		Str("path", c.FullPath()).
		Msg("request failed")
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "kind": kind})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}
