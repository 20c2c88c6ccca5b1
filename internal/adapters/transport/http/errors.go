package http

import (
	"net/http"

	httpmw "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/middleware"
	authErrors "github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/errors"
	"github.com/gin-gonic/gin"
)

const loginFailedDetail = "Incorrect username or password"

// handleError maps service errors to responses. Authentication failures never
// say which check failed; a denied permission names the rule.
func handleError(c *gin.Context, err error) {
	switch {
	case authErrors.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": authErrors.ValidationDetail(err)})
	case authErrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case authErrors.IsInvalidCredentials(err):
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, gin.H{"detail": loginFailedDetail})
	case authErrors.IsInvalidSession(err), authErrors.IsInvalidToken(err):
		httpmw.Unauthorized(c)
	case authErrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"detail": authErrors.ForbiddenRule(err)})
	case authErrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
	case authErrors.IsAlreadyExists(err):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Internal server error"})
	}
}
