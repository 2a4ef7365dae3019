package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SamOhrenberg/AboutSamuel/internal/pkg/jwtutil"
	"github.com/SamOhrenberg/AboutSamuel/internal/transport/http/response"
)

const (
	ContextClaimsKey  = "claims"
	ContextSubjectKey = "subject"
)

var (
	errMissingAuthorization = errors.New("missing authorization header")
	errInvalidScheme        = errors.New("invalid authorization scheme")
)

// BearerAuth validates the bearer token and stores its claims on the context.
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, err.Error())
			return
		}

		claims, err := jwtutil.ParseToken(secret, raw)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			return
		}

		c.Set(ContextClaimsKey, claims)
		c.Set(ContextSubjectKey, claims.Subject)
		c.Next()
	}
}

// RequireRole must run after BearerAuth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := c.Get(ContextClaimsKey)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, response.CodeUnauthorized, "not authenticated")
			return
		}
		if parsed, ok := claims.(*jwtutil.Claims); !ok || parsed.Role != role {
			response.Abort(c, http.StatusForbidden, response.CodeForbidden, role+" role required")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingAuthorization
	}
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errInvalidScheme
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", errMissingAuthorization
	}
	return token, nil
}
