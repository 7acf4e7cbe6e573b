package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"fichesynthese/internal/export"
	"fichesynthese/internal/models"

	"github.com/gin-gonic/gin"
)

// HandleOpenExport serves the exported document inline so the browser opens it
// in place.
func (h *Handler) HandleOpenExport(c *gin.Context) {
	h.deliverExport(c, "inline")
}

// HandleDownloadExport serves the exported document as a file download.
func (h *Handler) HandleDownloadExport(c *gin.Context) {
	h.deliverExport(c, "attachment")
}

func (h *Handler) deliverExport(c *gin.Context, disposition string) {
	rec, err := h.Store.Lookup(c.Param("sheetId"))
	if err != nil {
		h.rejectRequest(c, http.StatusNotFound, "export of unknown sheet", err, msgSheetNotFound)
		return
	}

	key := rec.ID.String()
	if err := h.Cooldown.Acquire(key); err != nil {
		if errors.Is(err, export.ErrCooldown) {
			c.Header("Retry-After", "1")
			h.rejectRequest(c, http.StatusTooManyRequests, "export refused by cooldown", err, msgExportBusy)
			return
		}
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Acquire Export Guard", err, msgUnknownError)
		return
	}

	doc, err := export.Render(&rec.Sheet, h.exportContext(rec.Context))
	if err != nil {
		h.Cooldown.Release(key)
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Render Study Sheet", err, msgExportFailed)
		return
	}

	filename := export.Filename(rec.Sheet.Title)
	header := c.Writer.Header()
	header.Set("Content-Type", export.ContentType)
	header.Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	header.Set("Content-Length", strconv.Itoa(len(doc)))
	header.Set("Cache-Control", "no-store")
	c.Status(http.StatusOK)

	if _, err := c.Writer.WriteString(doc); err != nil {
		h.Cooldown.Release(key)
		h.Log.Error("export delivery failed", "sheet_id", key, "disposition", disposition, "error", err)
		return
	}
	h.Log.Info("study sheet exported", "sheet_id", key, "disposition", disposition, "filename", filename, "bytes", len(doc))
}

func (h *Handler) exportContext(ctx models.ExportContext) models.ExportContext {
	if ctx.LogoURL == "" {
		ctx.LogoURL = h.Defaults.LogoURL
	}
	if ctx.BackgroundImageURL == "" {
		ctx.BackgroundImageURL = h.Defaults.BackgroundImageURL
	}
	return ctx
}
