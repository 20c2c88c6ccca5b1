package middleware

import (
	"context"
	"net/http"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	currentUserKey = "currentUser"

	CredentialsDetail = "Could not validate credentials"
)

type AccessResolver interface {
	ResolveAccess(ctx context.Context, token string) (model.User, error)
}

// BearerAuth resolves the access token in the Authorization header to a user
// and stores it for CurrentUser. Every resolution failure is the same 401.
func BearerAuth(resolver AccessResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Unauthorized(c)
			return
		}

		user, err := resolver.ResolveAccess(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(currentUserKey, user)
			c.Next()
		case customErrors.IsInvalidSession(err):
			log.Debug("access token rejected", zap.Error(err))
			Unauthorized(c)
		default:
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
		}
	}
}

// CurrentUser returns the user stored by BearerAuth.
func CurrentUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": CredentialsDetail})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
