package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/ZanzyTHEbar/distributor-competition/internal/errors"
	"github.com/ZanzyTHEbar/distributor-competition/internal/export"
	"github.com/ZanzyTHEbar/distributor-competition/internal/monitoring"
	"github.com/ZanzyTHEbar/distributor-competition/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

// importWorkbook godoc
// @Summary      Import a competition workbook
// @Description  Replaces every record with the rows of the "Competition Data" sheet. The current data is kept when the file is rejected.
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Workbook (.xlsx)"
// @Success      200   {object}  session.State
// @Failure      400   {object}  map[string]interface{}
// @Failure      413   {object}  map[string]interface{}
// @Failure      422   {object}  map[string]interface{}
// @Router       /api/import [post]
func (h *Handler) importWorkbook(c *gin.Context) {
	s := currentSession(c)
	if c.Request.ContentLength > h.maxUploadBytes {
		h.metrics.RecordImport(0, false)
		h.fail(c, apperrors.NewUploadTooLargeError(h.maxUploadBytes))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = apperrors.NewValidationError("Please choose a file to import.", errNoFile)
		}
		h.metrics.RecordImport(0, false)
		h.logger.ImportLogger(s.ID, "", 0, 0, err)
		h.fail(c, err)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.metrics.RecordImport(0, false)
		h.fail(c, apperrors.NewImportIOError(err))
		return
	}
	defer apperrors.SafeClose(file, "upload")

	rows, err := spreadsheet.ReadCompetitionData(file)
	if err == nil {
		_, err = s.ReplaceAll(rows)
	}
	if err != nil {
		h.metrics.RecordImport(0, false)
		h.logger.ImportLogger(s.ID, header.Filename, header.Size, 0, err)
		h.fail(c, err)
		return
	}

	state := s.State()
	h.metrics.RecordImport(len(rows), true)
	h.logger.ImportLogger(s.ID, header.Filename, header.Size, len(rows), nil)
	h.logger.MutationLogger(s.ID, "replace_all", state.Revision, len(state.Records))
	h.respond(c, state, fmt.Sprintf("Successfully imported %d distributors!", len(rows)))
}

// exportResults godoc
// @Summary      Download the results workbook
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/export/results.xlsx [get]
func (h *Handler) exportResults(c *gin.Context) {
	state := currentSession(c).State()
	h.sendFile(c, spreadsheet.ResultsFileName, spreadsheet.ContentType, func(buf *bytes.Buffer) error {
		return spreadsheet.WriteResults(buf, state.View)
	})
}

// exportTemplate godoc
// @Summary      Download the fillable template
// @Description  Lists the current names with blank tallies, or three blank rows for an untouched session.
// @Tags         export
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /api/export/template.xlsx [get]
func (h *Handler) exportTemplate(c *gin.Context) {
	state := currentSession(c).State()
	h.sendFile(c, spreadsheet.TemplateFileName, spreadsheet.ContentType, func(buf *bytes.Buffer) error {
		return spreadsheet.WriteTemplate(buf, state.Records, state.Pristine)
	})
}

// exportPresentation godoc
// @Summary      Download the standings presentation
// @Tags         export
// @Produce      html
// @Success      200
// @Router       /api/export/presentation.html [get]
func (h *Handler) exportPresentation(c *gin.Context) {
	state := currentSession(c).State()
	h.sendFile(c, export.PresentationFileName, export.ContentType, func(buf *bytes.Buffer) error {
		return h.renderer.Presentation(buf, state.View)
	})
}

// exportCertificates godoc
// @Summary      Download reward certificates
// @Description  One printable certificate per winner. Fails when nobody has earned a reward.
// @Tags         export
// @Produce      html
// @Success      200
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/export/certificates.html [get]
func (h *Handler) exportCertificates(c *gin.Context) {
	state := currentSession(c).State()
	h.sendFile(c, export.CertificatesFileName, export.ContentType, func(buf *bytes.Buffer) error {
		return h.renderer.Certificates(buf, state.View)
	})
}

// sendFile renders into memory first and sends the result as an attachment.
func (h *Handler) sendFile(c *gin.Context, filename, contentType string, render func(*bytes.Buffer) error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		h.fail(c, err)
		return
	}

	h.metrics.RecordExport(filename)
	h.logger.ExportLogger(currentSession(c).ID, filename, buf.Len(), time.Since(start))

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// liveUpdates godoc
// @Summary      Revision stream
// @Description  Websocket that receives {"revision": N} after every change to the caller's session.
// @Tags         live
// @Router       /api/ws [get]
func (h *Handler) liveUpdates(c *gin.Context) {
	s := currentSession(c)
	if err := h.hub.Serve(c.Writer, c.Request, s.ID); err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err, "session", monitoring.ShortID(s.ID))
	}
}
