package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodgram/internal/app"
	"foodgram/internal/logging"
	"foodgram/internal/transport/http/middleware"
	"foodgram/internal/transport/http/response"
)

// writeError maps service errors onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var verr *app.ValidationError
	var conflict *app.ConflictError
	switch {
	case errors.As(err, &verr):
		response.Validation(c, verr.Fields)
	case errors.As(err, &conflict):
		response.Conflict(c, conflict.Message)
	case errors.Is(err, app.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, app.ErrForbidden):
		response.Detail(c, http.StatusForbidden, "You do not have permission to perform this action.")
	case errors.Is(err, app.ErrInvalidCredential):
		response.Validation(c, map[string][]string{
			"non_field_errors": {"Unable to log in with provided credentials."},
		})
	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		response.Internal(c)
	}
}

// pathID parses a positive integer path parameter. Anything else is a 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}

// viewerID is the authenticated user id, or 0 for anonymous requests.
func viewerID(c *gin.Context) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

// requestURL rebuilds the absolute URL of the request for pagination links.
func requestURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	return &u
}
