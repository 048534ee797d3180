package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/middleware"
)

// authHandler handles login and the authenticated user's site and menu
// lookups.
type authHandler struct {
	authService portssvc.AuthSvcFacade
}

func newAuthHandler(as portssvc.AuthSvcFacade) *authHandler {
	return &authHandler{authService: as}
}

// registerAuthRoutes registers the public login route on the engine itself;
// everything else in this handler lives behind the auth middleware.
func registerAuthRoutes(r *gin.Engine, authService portssvc.AuthSvcFacade) {
	h := newAuthHandler(authService)
	r.POST("/api/v1/auth/login", h.login)
}

// registerUserRoutes registers the authenticated user lookups.
func registerUserRoutes(rg *gin.RouterGroup, authService portssvc.AuthSvcFacade) {
	h := newAuthHandler(authService)

	users := rg.Group("/users/me")
	{
		users.GET("/sites", h.listMySites)
		users.GET("/menus", h.listMyMenus)
	}
}

// login verifies the credentials and issues a bearer token.
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	token, user, err := h.authService.Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		respondLoginError(c, logger, err)
		return
	}

	logger.Info("Login succeeded", slog.String("user", req.UserID))
	respondSuccess(c, http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.ToUserResponse(user),
	})
}

// listMySites returns the sites the caller may work in.
func (h *authHandler) listMySites(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	sites, err := h.authService.GetUserSites(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accessible sites")
		return
	}
	respondSuccess(c, http.StatusOK, sites)
}

// listMyMenus returns the caller's menu tree for one site.
func (h *authHandler) listMyMenus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	menus, err := h.authService.GetUserMenus(c.Request.Context(), userID, c.Query("site"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list menus")
		return
	}
	respondSuccess(c, http.StatusOK, menus)
}
