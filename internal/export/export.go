// Package export renders a study sheet into a single self-contained HTML
// document with its own accordion and quiz behaviour.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"fichesynthese/internal/models"
)

// Panel headings, in document order.
const (
	HeadingPoints   = "Points Clés"
	HeadingConcepts = "Concepts & Définitions"
	HeadingActivity = "Déroulement de l'Activité"
	HeadingQuiz     = "Testez vos connaissances"
)

// ContentType is the media type of every exported document.
const ContentType = "text/html; charset=utf-8"

// SurfaceDeniedNotice is shown when the environment refuses to open the document.
const SurfaceDeniedNotice = "Impossible d'ouvrir la fiche : autorisez l'ouverture de nouvelles fenêtres (pop-ups) pour ce site, ou utilisez le téléchargement."

// ErrNilSheet is returned by Render when no sheet is given.
var ErrNilSheet = errors.New("export: nil study sheet")

var documentTemplate = template.Must(template.New("fiche").Parse(documentHTML))

type panel struct {
	Key     string
	Heading string
	Open    bool
}

type quizItem struct {
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

type documentData struct {
	Title          string
	Subtitle       string
	LogoURL        template.URL
	BackgroundURL  template.URL
	FontStylesheet string
	Style          template.CSS
	Sheet          *models.StudySheet
	Panels         []panel
	QuizCore       template.JS
	QuizData       []quizItem
	Wiring         template.JS
}

// Render builds the complete document for sheet. It performs no I/O; the same
// text backs both the in-place view and the download.
func Render(sheet *models.StudySheet, ctx models.ExportContext) (string, error) {
	if sheet == nil {
		return "", ErrNilSheet
	}

	var buf bytes.Buffer
	if err := documentTemplate.Execute(&buf, newDocumentData(sheet, ctx)); err != nil {
		return "", fmt.Errorf("rendering study sheet %q: %w", sheet.Title, err)
	}
	return buf.String(), nil
}

func newDocumentData(sheet *models.StudySheet, ctx models.ExportContext) documentData {
	panels := []panel{
		{Key: "points", Heading: HeadingPoints},
		{Key: "concepts", Heading: HeadingConcepts},
	}
	if len(sheet.ActivityFlow) > 0 {
		panels = append(panels, panel{Key: "activity", Heading: HeadingActivity})
	}
	panels = append(panels, panel{Key: "quiz", Heading: HeadingQuiz})
	panels[0].Open = true

	items := make([]quizItem, len(sheet.Quiz))
	for i, q := range sheet.Quiz {
		opts := q.Options
		if opts == nil {
			opts = []string{}
		}
		items[i] = quizItem{Options: opts, Answer: q.CorrectAnswer}
	}

	return documentData{
		Title:          sheet.Title,
		Subtitle:       ctx.Subtitle(),
		LogoURL:        imageURL(ctx.LogoURL),
		BackgroundURL:  imageURL(ctx.BackgroundImageURL),
		FontStylesheet: fontStylesheet,
		Style:          template.CSS(styleCSS),
		Sheet:          sheet,
		Panels:         panels,
		QuizCore:       template.JS(quizCoreJS),
		QuizData:       items,
		Wiring:         template.JS(wiringJS),
	}
}

// imageURL admits http(s) references and inline image data; anything else is dropped.
func imageURL(raw string) template.URL {
	u := strings.TrimSpace(raw)
	lower := strings.ToLower(u)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
	case strings.HasPrefix(lower, "data:image/"):
	default:
		return ""
	}
	if strings.ContainsAny(u, "'\"()\\\n\r") {
		return ""
	}
	return template.URL(u)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)

// Filename returns the suggested download name for a sheet titled title.
func Filename(title string) string {
	return "fiche-synthese-" + nonSlugChars.ReplaceAllString(strings.ToLower(title), "_") + ".html"
}
