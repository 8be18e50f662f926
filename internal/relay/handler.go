package relay

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Halfdees/Halo-csr-wrapper/internal/logger"
)

type Handler struct {
	service *Service
	logger  *logger.Logger
}

func NewHandler(log *logger.Logger, service *Service) *Handler {
	if log == nil {
		log = logger.Production()
	}
	return &Handler{
		service: service,
		logger:  log,
	}
}

// LookupCSR handles GET /csr?gt=<gamertag>&playlist=<playlist>.
//
// Caller authentication runs before this handler as middleware. The reply is
// always {"csr": <int|null>, "tier": <string|null>} on success; failures are
// reported through WriteError.
func (h *Handler) LookupCSR(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		WriteError(c, &Error{Kind: KindBadRequest, Message: msgMissingInput, Err: err})
		return
	}

	result, err := h.service.Lookup(c.Request.Context(), req)
	if err != nil {
		var relayErr *Error
		if !errors.As(err, &relayErr) {
			h.logger.Error("Unclassified lookup failure",
				"error", err,
			)
			relayErr = &Error{Kind: KindInternal, Message: msgInternal, Err: err}
		}
		WriteError(c, relayErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// WriteError writes err as a JSON error body with its kind's status code.
func WriteError(c *gin.Context, err *Error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(err.Kind.HTTPStatus(), err.Response())
}

// RecoveryHandler answers requests that panicked with a 500 Relay exception body.
func RecoveryHandler(log *logger.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.Error("Relay exception",
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: msgInternal})
	}
}
