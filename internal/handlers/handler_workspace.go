package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/middleware"
)

// workspaceHandler handles the per-user workspace: the selected site and
// what was resolved for it.
type workspaceHandler struct {
	workspaceService portssvc.WorkspaceSvcFacade
}

func newWorkspaceHandler(ws portssvc.WorkspaceSvcFacade) *workspaceHandler {
	return &workspaceHandler{workspaceService: ws}
}

// registerWorkspaceRoutes registers routes related to the workspace.
func registerWorkspaceRoutes(rg *gin.RouterGroup, workspaceService portssvc.WorkspaceSvcFacade) {
	h := newWorkspaceHandler(workspaceService)

	workspace := rg.Group("/workspace")
	{
		workspace.GET("", h.currentWorkspace)
		workspace.POST("/site", h.changeSite)
	}
}

// currentWorkspace returns the caller's workspace snapshot.
func (h *workspaceHandler) currentWorkspace(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	ws, err := h.workspaceService.Current(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to read the workspace")
		return
	}
	respondSuccess(c, http.StatusOK, ws)
}

// changeSite switches the caller's current site. A change already in flight
// for the same caller is rejected with a conflict, not queued.
func (h *workspaceHandler) changeSite(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	var req dto.ChangeSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	ws, err := h.workspaceService.ChangeSite(c.Request.Context(), userID, req.Site)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to change the site")
		return
	}

	logger.Info("Site changed", slog.String("user", userID), slog.String("site", ws.CurrentSiteID))
	respondSuccess(c, http.StatusOK, ws)
}
