package handler

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/event-calendar-api/internal/dto"
	appErrors "github.com/noah-isme/event-calendar-api/pkg/errors"
	"github.com/noah-isme/event-calendar-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, format string, r io.Reader) (*dto.ImportReport, error)
}

type exportService interface {
	Export(ctx context.Context, format string) (*dto.ExportFile, error)
}

// SkippedEventsHeader carries how many events an export left out.
const SkippedEventsHeader = "X-Skipped-Events"

// TransferHandler serves event import and export.
type TransferHandler struct {
	imports       importService
	exports       exportService
	maxUploadSize int64
}

// NewTransferHandler constructs the handler. maxUploadSize <= 0 disables the
// size check.
func NewTransferHandler(imports importService, exports exportService, maxUploadSize int64) *TransferHandler {
	return &TransferHandler{imports: imports, exports: exports, maxUploadSize: maxUploadSize}
}

// Import godoc
// @Summary Import events from a CSV or ICS file
// @Tags Transfer
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or ICS file"
// @Param format formData string false "csv or ics; defaults to the file extension"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Security BearerAuth
// @Router /events/import [post]
func (h *TransferHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "file exceeds "+strconv.FormatInt(h.maxUploadSize, 10)+" bytes"))
		return
	}

	format := strings.ToLower(strings.TrimSpace(c.PostForm("format")))
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(fileHeader.Filename)), ".")
	}
	if format != dto.ImportFormatCSV && format != dto.ImportFormatICS {
		response.Error(c, appErrors.Clone(appErrors.ErrUnsupportedFile, "only .csv and .ics files can be imported"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	report, err := h.imports.Import(c.Request.Context(), format, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ExportICS godoc
// @Summary Export resolved events as iCalendar
// @Tags Transfer
// @Produce text/calendar
// @Success 200 {file} file
// @Router /events/export.ics [get]
func (h *TransferHandler) ExportICS(c *gin.Context) {
	h.export(c, dto.ExportFormatICS)
}

// ExportCSV godoc
// @Summary Export every event as CSV
// @Tags Transfer
// @Produce text/csv
// @Success 200 {file} file
// @Router /events/export.csv [get]
func (h *TransferHandler) ExportCSV(c *gin.Context) {
	h.export(c, dto.ExportFormatCSV)
}

// ExportPDF godoc
// @Summary Export resolved events as a PDF agenda
// @Tags Transfer
// @Produce application/pdf
// @Success 200 {file} file
// @Router /events/export.pdf [get]
func (h *TransferHandler) ExportPDF(c *gin.Context) {
	h.export(c, dto.ExportFormatPDF)
}

func (h *TransferHandler) export(c *gin.Context, format string) {
	file, err := h.exports.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Header(SkippedEventsHeader, strconv.Itoa(len(file.Skipped)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
