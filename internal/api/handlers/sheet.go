package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"fichesynthese/internal/gemini"
	"fichesynthese/internal/models"
	"fichesynthese/internal/notify"
	"fichesynthese/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// GenerateSheetForm is the multipart body of a generation request.
type GenerateSheetForm struct {
	Course         *multipart.FileHeader `form:"course"`
	TD             *multipart.FileHeader `form:"td"`
	SequenceNumber string                `form:"sequence_number" binding:"omitempty,max=16"`
	ActivityNumber string                `form:"activity_number" binding:"omitempty,max=16"`
}

// HandleGenerateSheet generates a study sheet from an uploaded course and an
// optional TD, stores it and makes it the session's current sheet.
func (h *Handler) HandleGenerateSheet(c *gin.Context) {
	startTime := time.Now()

	var form GenerateSheetForm
	if err := c.ShouldBind(&form); err != nil {
		h.rejectRequest(c, http.StatusBadRequest, "invalid generation form", err, fmt.Sprintf("Formulaire invalide : %v", err))
		return
	}
	if form.Course == nil {
		h.rejectRequest(c, http.StatusBadRequest, "course file missing", errors.New("no course file"), msgMissingCourse)
		return
	}

	course, err := readDocument(form.Course)
	if err != nil {
		h.rejectDocument(c, err)
		return
	}
	var td *gemini.DocumentFile
	if form.TD != nil {
		if td, err = readDocument(form.TD); err != nil {
			h.rejectDocument(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	if h.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.GenerationTimeout)
		defer cancel()
	}

	sheet, err := h.Generator.GenerateStudySheet(ctx, *course, td)
	if err != nil {
		h.handleErrorAndNotify(c, generationStatus(err), "Generate Study Sheet", err, msgGenerationFailed)
		return
	}

	exportCtx := models.ExportContext{
		SequenceNumber: strings.TrimSpace(form.SequenceNumber),
		ActivityNumber: strings.TrimSpace(form.ActivityNumber),
	}
	h.decorate(ctx, &exportCtx)

	rec := h.Store.Put(*sheet, exportCtx)

	session := sessions.Default(c)
	session.Set(CurrentSheetSessionKey, rec.ID.String())
	if err := session.Save(); err != nil {
		// The sheet is still reachable by ID.
		h.Log.Warn("failed to save session", "sheet_id", rec.ID, "error", err)
	}

	elapsed := time.Since(startTime)
	h.Log.Info("study sheet generated",
		"sheet_id", rec.ID,
		"title", sheet.Title,
		"course", course.Name,
		"with_td", td != nil,
		"questions", len(sheet.Quiz),
		"elapsed", elapsed)

	fields := []notify.EmbedField{
		{Name: "Title", Value: sheet.Title},
		{Name: "Course", Value: fmt.Sprintf("%s (%s)", course.Name, course.Kind()), Inline: true},
		{Name: "Questions", Value: fmt.Sprintf("%d", len(sheet.Quiz)), Inline: true},
		{Name: "Duration", Value: elapsed.Round(time.Millisecond).String(), Inline: true},
	}
	if td != nil {
		fields = append(fields, notify.EmbedField{Name: "TD", Value: td.Name, Inline: true})
	}
	h.Notifier.Send(notify.Embed{
		Title:  "📄 New Study Sheet Generated",
		Color:  notify.ColorSuccess,
		Fields: fields,
	})

	c.JSON(http.StatusCreated, rec)
}

// HandleGetCurrentSheet returns the last sheet generated in this session.
func (h *Handler) HandleGetCurrentSheet(c *gin.Context) {
	session := sessions.Default(c)
	id, _ := session.Get(CurrentSheetSessionKey).(string)
	if id == "" {
		h.rejectRequest(c, http.StatusNotFound, "no current sheet in session", store.ErrNotFound, msgSheetNotFound)
		return
	}
	rec, err := h.Store.Lookup(id)
	if err != nil {
		// Evicted or from a previous process.
		session.Delete(CurrentSheetSessionKey)
		_ = session.Save()
		h.rejectRequest(c, http.StatusNotFound, "current sheet not found", err, msgSheetNotFound)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// HandleGetSheet returns a sheet by ID.
func (h *Handler) HandleGetSheet(c *gin.Context) {
	rec, err := h.Store.Lookup(c.Param("sheetId"))
	if err != nil {
		h.rejectRequest(c, http.StatusNotFound, "sheet not found", err, msgSheetNotFound)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func readDocument(fh *multipart.FileHeader) (*gemini.DocumentFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return gemini.NewDocumentFile(f, fh.Filename)
}

func (h *Handler) rejectDocument(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gemini.ErrFileTooLarge):
		h.rejectRequest(c, http.StatusRequestEntityTooLarge, "document too large", err, "Le fichier dépasse la taille maximale de 20 Mo.")
	case errors.Is(err, gemini.ErrEmptyFile):
		h.rejectRequest(c, http.StatusBadRequest, "empty document", err, "Le fichier téléversé est vide.")
	case errors.Is(err, gemini.ErrUnsupportedType):
		h.rejectRequest(c, http.StatusUnsupportedMediaType, "unsupported document", err, "Format non pris en charge : utilisez une image, un PDF ou un PowerPoint.")
	default:
		h.handleErrorAndNotify(c, http.StatusInternalServerError, "Read Uploaded Document", err, msgUnknownError)
	}
}

func generationStatus(err error) int {
	var invalid *gemini.InvalidResponseError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &invalid), errors.Is(err, gemini.ErrEmptyResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// decorate fills the logo and background with generated illustrations when
// images are enabled and no default is configured. Failures leave them empty.
func (h *Handler) decorate(ctx context.Context, exportCtx *models.ExportContext) {
	if h.Images == nil {
		return
	}
	if h.Defaults.LogoURL == "" {
		if url, err := h.Images.Logo(ctx); err != nil {
			h.Log.Warn("logo generation failed", "error", err)
		} else {
			exportCtx.LogoURL = url
		}
	}
	if h.Defaults.BackgroundImageURL == "" {
		if url, err := h.Images.Background(ctx); err != nil {
			h.Log.Warn("background generation failed", "error", err)
		} else {
			exportCtx.BackgroundImageURL = url
		}
	}
}
