package v1

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gin-gonic/gin"
)

// importFormField is the multipart field holding the uploaded CSV.
const importFormField = "file"

// TransferHandler serves CSV import and export.
type TransferHandler struct {
	importService service.ImportService
	exportService service.ExportService
	config        *config.Configuration
	log           *logger.Logger
}

func NewTransferHandler(
	importService service.ImportService,
	exportService service.ExportService,
	config *config.Configuration,
	log *logger.Logger,
) *TransferHandler {
	return &TransferHandler{
		importService: importService,
		exportService: exportService,
		config:        config,
		log:           log,
	}
}

// @Summary Import a CSV file
// @Description Accepts a multipart upload in the "file" field or a raw text/csv body. Duplicate rows are skipped, invalid rows are reported by line number.
// @Tags Import
// @Accept multipart/form-data
// @Accept text/csv
// @Produce json
// @Security BearerAuth
// @Param entity path string true "clients, providers or devices"
// @Param file formData file false "CSV file"
// @Success 200 {object} dto.ImportResult
// @Failure 400 {object} ierr.ErrorResponse
// @Router /import/{entity} [post]
func (h *TransferHandler) Import(c *gin.Context) {
	entity := types.TableName(c.Param("entity"))

	if limit := h.config.Import.MaxFileSize; limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	body, closeBody, err := h.uploadedFile(c)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeBody()

	resp, err := h.importService.Import(c.Request.Context(), entity, body)
	if err != nil {
		h.log.WithContext(c.Request.Context()).Errorw("csv import failed", "entity", entity, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TransferHandler) uploadedFile(c *gin.Context) (io.Reader, func(), error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return c.Request.Body, func() {}, nil
	}

	fh, err := c.FormFile(importFormField)
	if err != nil {
		return nil, nil, ierr.WithError(err).
			WithHintf("Attach the CSV in the %q form field", importFormField).
			Mark(ierr.ErrValidation)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, ierr.WithError(err).
			WithHint("The uploaded file could not be read").
			Mark(ierr.ErrValidation)
	}
	return f, func() { _ = f.Close() }, nil
}

// @Summary Export a table as CSV
// @Tags Export
// @Produce text/csv
// @Security BearerAuth
// @Param file path string true "clients.csv, providers.csv, devices.csv, subscriptions.csv or invoices.csv"
// @Success 200 {file} file
// @Router /export/{file} [get]
func (h *TransferHandler) Export(c *gin.Context) {
	name := c.Param("file")
	if !strings.HasSuffix(name, ".csv") {
		c.Error(ierr.NewErrorf("unsupported export %s", name).
			WithHint("Exports are only available as .csv").
			Mark(ierr.ErrValidation))
		return
	}
	entity := types.TableName(strings.TrimSuffix(name, ".csv"))

	data, err := h.exportService.ExportCSV(c.Request.Context(), entity)
	if err != nil {
		c.Error(err)
		return
	}

	filename := fmt.Sprintf("%s-%s.csv", entity, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
