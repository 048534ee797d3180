package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plakor-mes/assy-dashboard/internal/core/domain"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/middleware"
	"github.com/plakor-mes/assy-dashboard/internal/utils/excel"
)

// specHandler handles HTTP requests for the ALC spec master screens.
type specHandler struct {
	specService portssvc.SpecSvcFacade
}

func newSpecHandler(ss portssvc.SpecSvcFacade) *specHandler {
	return &specHandler{specService: ss}
}

// registerSpecRoutes registers routes related to spec records.
func registerSpecRoutes(rg *gin.RouterGroup, specService portssvc.SpecSvcFacade) {
	h := newSpecHandler(specService)

	specs := rg.Group("/specs")
	{
		specs.GET("", h.listSpecs)
		specs.POST("", h.createSpec)
		specs.PUT("", h.updateSpec)
		specs.POST("/delete", h.deleteSpecs)
		specs.POST("/check-duplicate", h.checkDuplicate)
		specs.POST("/upload", h.uploadSpecs)
		specs.GET("/car-types", h.listCarTypes)
		specs.GET("/line-ids", h.listLineIDs)
		specs.GET("/work-types", h.listWorkTypes)
	}
}

// listSpecs retrieves spec records for the grid, newest first.
func (h *specHandler) listSpecs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SpecListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	records, err := h.specService.ListSpecs(c.Request.Context(), params.Site, params.ToFilter())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list spec records")
		return
	}

	logger.Info("Specs listed", slog.String("site", params.Site), slog.Int("count", len(records)))
	respondSuccess(c, http.StatusOK, records)
}

// createSpec inserts a new spec record after the composite duplicate check.
func (h *specHandler) createSpec(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	var req dto.CreateSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	if err := h.specService.CreateSpec(c.Request.Context(), site, req, creatorUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to create spec record")
		return
	}

	logger.Info("Spec created", slog.String("site", site), slog.String("item_cd", req.ItemCd))
	respondSuccess(c, http.StatusCreated, nil)
}

// updateSpec applies allow-listed field changes to the record identified by
// its original composite key.
func (h *specHandler) updateSpec(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	var req dto.UpdateSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	updaterUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Updater user ID not found in context")
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	if err := h.specService.UpdateSpec(c.Request.Context(), site, req, updaterUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to update spec record")
		return
	}

	logger.Info("Spec updated", slog.String("site", site), slog.String("item_cd", req.OriginalKey.ItemCd))
	respondSuccess(c, http.StatusOK, nil)
}

// deleteSpecs attempts every submitted key and reports per-key outcomes.
func (h *specHandler) deleteSpecs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	var req dto.DeleteSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	keys := make([]domain.SpecKey, len(req.Keys))
	for i, k := range req.Keys {
		keys[i] = k.ToDomain()
	}

	outcome, err := h.specService.DeleteSpecs(c.Request.Context(), site, keys)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to delete spec records")
		return
	}

	logger.Info("Specs deleted",
		slog.String("site", site),
		slog.Int("deleted", outcome.Deleted),
		slog.Int("failed", outcome.Failed))
	respondSuccess(c, http.StatusOK, outcome)
}

// checkDuplicate runs the composite-key or item-code duplicate check for the
// edit form.
func (h *specHandler) checkDuplicate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	var req dto.CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	dup, err := h.specService.CheckDuplicate(c.Request.Context(), site, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to check for duplicates")
		return
	}

	respondSuccess(c, http.StatusOK, dto.CheckDuplicateResponse{IsDuplicate: dup})
}

// uploadSpecs parses an uploaded workbook and bulk-inserts its rows.
// With dryRun=true only the validation report is returned.
func (h *specHandler) uploadSpecs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	dryRun := c.Query("dryRun") == "true"

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		respondError(c, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		logger.Warn("Upload without file part", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, "validation", "A workbook file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		respondError(c, http.StatusBadRequest, "validation", "Cannot read the uploaded file")
		return
	}
	defer file.Close()

	rows, err := excel.ParseSpecSheet(file)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to parse the uploaded workbook")
		return
	}

	outcome, err := h.specService.UploadSpecs(c.Request.Context(), site, rows, creatorUserID, dryRun)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to upload spec records")
		return
	}

	status := http.StatusOK
	if !outcome.Valid() && outcome.Inserted == 0 {
		// Nothing got in; the validation report is the payload.
		status = http.StatusUnprocessableEntity
	}
	logger.Info("Spec upload processed",
		slog.String("site", site),
		slog.Bool("dry_run", dryRun),
		slog.Int("total", outcome.TotalRows),
		slog.Int("inserted", outcome.Inserted))
	respondSuccess(c, status, outcome)
}

func (h *specHandler) listCarTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	carTypes, err := h.specService.ListCarTypes(c.Request.Context(), c.Query("site"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list car types")
		return
	}
	respondSuccess(c, http.StatusOK, carTypes)
}

func (h *specHandler) listLineIDs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	lineIDs, err := h.specService.ListLineIDs(c.Request.Context(), c.Query("site"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list line IDs")
		return
	}
	respondSuccess(c, http.StatusOK, lineIDs)
}

func (h *specHandler) listWorkTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	workTypes, err := h.specService.ListWorkTypes(c.Request.Context(), c.Query("site"), c.Query("carType"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list work types")
		return
	}
	respondSuccess(c, http.StatusOK, workTypes)
}
