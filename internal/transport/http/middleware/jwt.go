package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"foodgram/internal/logging"
	"foodgram/internal/pkg/jwtutil"
	"foodgram/internal/transport/http/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextClaimsKey = "claims"
)

type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*jwtutil.Claims, error)
}

// Auth resolves the Authorization header. Both "Token <t>" and "Bearer <t>"
// are accepted.
type Auth struct {
	authenticator TokenAuthenticator
}

func NewAuth(authenticator TokenAuthenticator) *Auth {
	return &Auth{authenticator: authenticator}
}

// Required rejects requests without a valid token.
func (a *Auth) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.resolve(c) {
			return
		}
		if _, ok := CurrentUserID(c); !ok {
			response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		c.Next()
	}
}

// Optional lets anonymous requests through but still rejects a token that is
// present and invalid.
func (a *Auth) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.resolve(c) {
			return
		}
		c.Next()
	}
}

func (a *Auth) resolve(c *gin.Context) bool {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return true
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || (scheme != "Token" && scheme != "Bearer") {
		response.Detail(c, http.StatusUnauthorized, "Invalid authorization scheme.")
		return false
	}

	claims, err := a.authenticator.Authenticate(c.Request.Context(), strings.TrimSpace(token))
	if err != nil {
		if !errors.Is(err, jwtutil.ErrInvalidToken) {
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("authenticate token failed")
		}
		response.Detail(c, http.StatusUnauthorized, "Invalid token.")
		return false
	}

	c.Set(ContextUserIDKey, claims.UserID)
	c.Set(ContextClaimsKey, claims)
	logger := logging.Ctx(c.Request.Context()).With().Uint("user_id", claims.UserID).Logger()
	c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
	return true
}

// CurrentUserID returns the authenticated user id, if any.
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}

func CurrentClaims(c *gin.Context) (*jwtutil.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*jwtutil.Claims)
	return claims, ok
}
