package http

import (
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/dto"
	httpmw "github.com/Miraines/MoonyAndStarry/portal-service/internal/adapters/transport/http/middleware"
	appsvc "github.com/Miraines/MoonyAndStarry/portal-service/internal/app/auth/service"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/portal-service/internal/infra/health"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieConfig describes the refresh-token cookie.
type CookieConfig struct {
	Name   string
	Domain string
	Secure bool
	MaxAge time.Duration
}

type Handler struct {
	auth    appsvc.Service
	users   appsvc.UserService
	checker *health.Checker
	cookie  CookieConfig
	log     *zap.Logger
}

func NewHandler(
	auth appsvc.Service,
	users appsvc.UserService,
	checker *health.Checker,
	cookie CookieConfig,
	log *zap.Logger,
) *Handler {
	return &Handler{auth: auth, users: users, checker: checker, cookie: cookie, log: log}
}

// Register mounts the login, user and health routes.
func (h *Handler) Register(r gin.IRouter) {
	bearer := httpmw.BearerAuth(h.auth, h.log)

	login := r.Group("/login")
	login.POST("/", h.login)
	login.POST("/refresh", h.refresh)
	login.POST("/logout", h.logout)

	user := r.Group("/user")
	user.POST("/", h.createUser)
	user.GET("/", bearer, h.getUser)
	user.PATCH("/", bearer, h.updateUser)
	user.DELETE("/", bearer, h.deleteUser)
	user.PATCH("/admin_privilege", bearer, h.grantAdmin)
	user.DELETE("/admin_privilege", bearer, h.revokeAdmin)

	r.GET("/health", h.health)
}

func (h *Handler) login(c *gin.Context) {
	var body dto.LoginDTO
	if err := c.ShouldBind(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	h.log.Info("/login",
		zap.String("user", fmt.Sprintf("%x", sha256.Sum256([]byte(body.Login)))),
	)

	pair, err := h.auth.Login(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *Handler) refresh(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)

	pair, err := h.auth.Renew(c.Request.Context(), dto.RefreshDTO{RefreshToken: token})
	if err != nil {
		h.log.Debug("refresh rejected", zap.Error(err))
		handleError(c, err)
		return
	}
	h.issueTokens(c, pair)
}

func (h *Handler) logout(c *gin.Context) {
	token, _ := c.Cookie(h.cookie.Name)

	if err := h.auth.Logout(c.Request.Context(), dto.LogoutDTO{RefreshToken: token}); err != nil {
		handleError(c, err)
		return
	}
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"detail": "Logged out"})
}

// issueTokens puts the refresh token in an HttpOnly cookie and the access token in the body.
func (h *Handler) issueTokens(c *gin.Context, pair model.TokenPair) {
	c.SetCookie(
		h.cookie.Name,
		pair.RefreshToken,
		int(h.cookie.MaxAge.Seconds()),
		"/",
		h.cookie.Domain,
		h.cookie.Secure,
		true,
	)
	c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

func (h *Handler) createUser(c *gin.Context) {
	var body dto.CreateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	user, err := h.users.Create(c.Request.Context(), body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, showUser(user))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	user, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, showUser(user))
}

func (h *Handler) updateUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	var body dto.UpdateUserDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	actor, _ := httpmw.CurrentUser(c)
	updated, err := h.users.Update(c.Request.Context(), actor, id, body)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdatedUserResponse{UpdatedUserID: updated.String()})
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	actor, _ := httpmw.CurrentUser(c)
	deleted, err := h.users.Delete(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeletedUserResponse{DeletedUserID: deleted.String()})
}

func (h *Handler) grantAdmin(c *gin.Context) {
	h.changeRole(c, h.users.GrantAdmin)
}

func (h *Handler) revokeAdmin(c *gin.Context) {
	h.changeRole(c, h.users.RevokeAdmin)
}

func (h *Handler) changeRole(c *gin.Context, change func(context.Context, model.User, uuid.UUID) (uuid.UUID, error)) {
	id, ok := userIDParam(c)
	if !ok {
		return
	}
	actor, _ := httpmw.CurrentUser(c)
	updated, err := change(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdatedUserResponse{UpdatedUserID: updated.String()})
}

func (h *Handler) health(c *gin.Context) {
	failed := h.checker.Run(c.Request.Context())
	if len(failed) == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
		return
	}
	checks := make(gin.H, len(failed))
	for name, err := range failed {
		h.log.Warn("health check failed", zap.String("check", name), zap.Error(err))
		checks[name] = "unavailable"
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
}

func userIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "user_id must be a valid UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func showUser(u model.User) dto.ShowUser {
	return dto.ShowUser{
		UserID:   u.ID.String(),
		Login:    u.Login,
		Role:     u.Role.String(),
		IsActive: u.IsActive,
	}
}
