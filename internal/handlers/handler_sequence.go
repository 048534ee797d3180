package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/plakor-mes/assy-dashboard/internal/core/ports/repositories"
	portssvc "github.com/plakor-mes/assy-dashboard/internal/core/ports/services"
	"github.com/plakor-mes/assy-dashboard/internal/dto"
	"github.com/plakor-mes/assy-dashboard/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sequenceHandler handles HTTP requests for the sequence receive status
// screen.
type sequenceHandler struct {
	sequenceService portssvc.SequenceSvcFacade
}

func newSequenceHandler(ss portssvc.SequenceSvcFacade) *sequenceHandler {
	return &sequenceHandler{sequenceService: ss}
}

// registerSequenceRoutes registers routes related to sequence inquiries.
func registerSequenceRoutes(rg *gin.RouterGroup, sequenceService portssvc.SequenceSvcFacade) {
	h := newSequenceHandler(sequenceService)

	sequences := rg.Group("/sequences")
	{
		sequences.GET("", h.listSequences)
		sequences.GET("/cursor", h.listSequencesByCursor)
		sequences.GET("/export", h.exportSequences)
		sequences.GET("/export/file", h.downloadExportFile)
		sequences.GET("/body-types", h.listBodyTypes)
		sequences.POST("/retry-work-instruction", h.retryWorkInstruction)
	}
}

// listSequences serves one offset page of the combined live and backup data.
func (h *sequenceHandler) listSequences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SequenceListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	page, err := h.sequenceService.ListSequences(c.Request.Context(), params.Site, params.ToFilter(), params.Page, params.PageSize)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list sequence data")
		return
	}

	logger.Info("Sequences listed",
		slog.String("site", params.Site),
		slog.Int("page", params.Page),
		slog.Int("count", len(page.Records)))
	respondSuccess(c, http.StatusOK, page)
}

// listSequencesByCursor serves one keyset page.
func (h *sequenceHandler) listSequencesByCursor(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SequenceCursorParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	page, err := h.sequenceService.ListSequencesByCursor(c.Request.Context(), params.Site, params.ToFilter(),
		params.Cursor, repositories.CursorDirection(params.Direction), params.PageSize)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list sequence data")
		return
	}

	respondSuccess(c, http.StatusOK, page)
}

// exportSequences serves one JSON chunk of the export drain.
func (h *sequenceHandler) exportSequences(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SequenceExportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	chunk, err := h.sequenceService.ExportSequences(c.Request.Context(), params.Site, params.ToFilter(), params.Chunk, params.ChunkSize)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to export sequence data")
		return
	}

	respondSuccess(c, http.StatusOK, chunk)
}

// downloadExportFile renders the full filtered result set as an xlsx
// attachment.
func (h *sequenceHandler) downloadExportFile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.SequenceExportParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	payload, err := h.sequenceService.BuildExportFile(c.Request.Context(), params.Site, params.ToFilter())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build the export file")
		return
	}

	filename := fmt.Sprintf("sequence_status_%s_%s.xlsx", params.Site, time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, payload)
}

func (h *sequenceHandler) listBodyTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	bodyTypes, err := h.sequenceService.ListBodyTypes(c.Request.Context(), c.Query("site"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list body types")
		return
	}
	respondSuccess(c, http.StatusOK, bodyTypes)
}

// retryWorkInstruction re-runs work-order generation for one production
// timestamp.
func (h *sequenceHandler) retryWorkInstruction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	site := c.Query("site")
	var req dto.RetryWorkInstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, logger, err)
		return
	}

	outcome, err := h.sequenceService.RetryWorkInstruction(c.Request.Context(), site, req.ProdDttm)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retry the work instruction")
		return
	}

	logger.Info("Work instruction retried",
		slog.String("site", site),
		slog.String("prod_dttm", req.ProdDttm))
	respondSuccess(c, http.StatusOK, outcome)
}
