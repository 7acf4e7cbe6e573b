package handlers

import (
	"context"
	"net/http"
	"time"

	"fichesynthese/internal/export"
	"fichesynthese/internal/gemini"
	"fichesynthese/internal/logger"
	"fichesynthese/internal/models"
	"fichesynthese/internal/notify"
	"fichesynthese/internal/store"

	"github.com/gin-gonic/gin"
)

// CurrentSheetSessionKey holds the ID of the last sheet generated in a session.
const CurrentSheetSessionKey = "current_sheet_id"

// User-facing messages.
const (
	msgMissingCourse    = "Veuillez d'abord téléverser un fichier de cours."
	msgSheetNotFound    = "Fiche introuvable."
	msgExportBusy       = "Export déjà en cours, veuillez réessayer dans un instant."
	msgExportFailed     = "La génération du document HTML a échoué. Veuillez réessayer."
	msgGenerationFailed = "Échec de la génération de la fiche depuis l'API Gemini."
	msgUnknownError     = "Une erreur inconnue est survenue."
)

// SheetGenerator turns a course document (and an optional TD) into a study sheet.
type SheetGenerator interface {
	GenerateStudySheet(ctx context.Context, course gemini.DocumentFile, td *gemini.DocumentFile) (*models.StudySheet, error)
}

// ImageSource provides the decorative illustrations.
type ImageSource interface {
	Welcome(ctx context.Context) (string, error)
	Logo(ctx context.Context) (string, error)
	Background(ctx context.Context) (string, error)
}

// Handler contains the API handlers dependencies
type Handler struct {
	Generator SheetGenerator
	Store     *store.MemoryStore
	Cooldown  *export.Cooldown
	Notifier  *notify.Discord
	Log       *logger.Logger

	// Images is optional; nil disables illustrations.
	Images ImageSource
	// Defaults fills the logo and background of exports whose record has none.
	Defaults          models.ExportContext
	GenerationTimeout time.Duration
}

// NewHandler creates a new Handler
func NewHandler(gen SheetGenerator, st *store.MemoryStore, cooldown *export.Cooldown, notifier *notify.Discord, log *logger.Logger) *Handler {
	return &Handler{
		Generator: gen,
		Store:     st,
		Cooldown:  cooldown,
		Notifier:  notifier,
		Log:       log.With("component", "handlers"),
	}
}

// handleErrorAndNotify logs an error, sends a Discord notification and aborts
// the request with message as the JSON error.
func (h *Handler) handleErrorAndNotify(c *gin.Context, statusCode int, errorContext string, err error, message string) {
	h.Log.Error(errorContext, "error", err, "status", statusCode, "path", c.Request.URL.Path)
	h.Notifier.Send(notify.ErrorEmbed(errorContext, statusCode, c.Request.URL.Path, err))
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}

// rejectRequest aborts a request the client can fix; nothing is notified.
func (h *Handler) rejectRequest(c *gin.Context, statusCode int, reason string, err error, message string) {
	h.Log.Warn(reason, "error", err, "status", statusCode, "path", c.Request.URL.Path)
	c.AbortWithStatusJSON(statusCode, models.ErrorResponse{Error: message})
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"sheets": h.Store.Len(),
		"images": h.Images != nil,
	})
}
