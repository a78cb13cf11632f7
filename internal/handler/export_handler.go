package handler

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/studytrack/studytrack-api/internal/service"
	appErrors "github.com/studytrack/studytrack-api/pkg/errors"
	"github.com/studytrack/studytrack-api/pkg/response"
)

// ExportHandler exposes export generation and signed download endpoints.
type ExportHandler struct {
	service *service.ExportService
	metrics *service.MetricsService
}

// NewExportHandler creates a new handler. metrics may be nil.
func NewExportHandler(svc *service.ExportService, metrics *service.MetricsService) *ExportHandler {
	return &ExportHandler{service: svc, metrics: metrics}
}

// Generate godoc
// @Summary Generate export
// @Description Render the caller's grades or assignments to CSV or PDF
// @Tags Exports
// @Produce json
// @Param kind path string true "Export kind (grades or assignments)"
// @Param format query string false "File format (csv or pdf, default csv)"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /exports/{kind} [post]
func (h *ExportHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	kind := service.ExportKind(c.Param("kind"))
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))

	result, err := h.service.Generate(c.Request.Context(), claims.UserID, kind, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordExport(kind, format)

	response.Created(c, result)
}

// Download godoc
// @Summary Download export
// @Description Stream a previously generated export behind its signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 401 {object} response.Envelope
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}

	_, relPath, _, err := h.service.ParseToken(token, false)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, http.StatusUnauthorized, "invalid or expired download token"))
		return
	}

	file, err := h.service.Open(relPath)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export no longer available"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read export"))
		return
	}

	contentType := "application/octet-stream"
	switch filepath.Ext(relPath) {
	case ".csv":
		contentType = "text/csv"
	case ".pdf":
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", "attachment; filename="+filepath.Base(relPath))
	c.DataFromReader(http.StatusOK, info.Size(), contentType, file, nil)
}
