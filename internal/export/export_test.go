package export

import (
	"strings"
	"testing"
	"time"

	"fichesynthese/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet() *models.StudySheet {
	return &models.StudySheet{
		Title:         "La cellule végétale",
		SummaryPoints: []string{"La paroi protège la cellule.", "Les chloroplastes produisent l'énergie."},
		KeyConcepts: []models.KeyConcept{
			{Term: "Paroi", Definition: "Enveloppe rigide en cellulose."},
			{Term: "Vacuole", Definition: "Réserve d'eau."},
		},
		ActivityFlow: []string{"Observer au microscope.", "Dessiner la cellule."},
		Quiz: []models.QuizQuestion{
			{Question: "Quel organite fait la photosynthèse ?", Options: []string{"Noyau", "Chloroplaste", "Ribosome"}, CorrectAnswer: "Chloroplaste"},
			{Question: "De quoi est faite la paroi ?", Options: []string{"Cellulose", "Lipides", "Protéines"}, CorrectAnswer: "Cellulose"},
			{Question: "Que stocke la vacuole ?", Options: []string{"ADN", "Eau", "Lumière"}, CorrectAnswer: " Eau "},
		},
	}
}

func renderDoc(t *testing.T, sheet *models.StudySheet, ctx models.ExportContext) (string, *goquery.Document) {
	t.Helper()
	out, err := Render(sheet, ctx)
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return out, doc
}

func panelIDs(doc *goquery.Document) []string {
	var ids []string
	doc.Find("section.panel").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("id")
		ids = append(ids, id)
	})
	return ids
}

func TestRenderNilSheet(t *testing.T) {
	_, err := Render(nil, models.ExportContext{})
	assert.ErrorIs(t, err, ErrNilSheet)
}

func TestRenderEscapesUserText(t *testing.T) {
	sheet := sampleSheet()
	sheet.Title = "<script>x</script>"
	sheet.SummaryPoints = []string{"</li><li>injected"}
	sheet.KeyConcepts[0].Term = `"><img src=x onerror=alert(1)>`
	sheet.Quiz[0].Options[1] = "</script><script>alert(1)</script>"
	sheet.Quiz[0].CorrectAnswer = "</script><script>alert(1)</script>"

	out, doc := renderDoc(t, sheet, models.ExportContext{})

	assert.Equal(t, "<script>x</script>", doc.Find("#sheet-title").Text())
	assert.Equal(t, "<script>x</script>", doc.Find("title").Text())
	assert.Equal(t, 1, strings.Count(out, "<script"), "only the embedded script may appear")
	assert.Equal(t, 1, doc.Find("script").Length())
	assert.Equal(t, 0, doc.Find("img").Length())
	assert.Equal(t, 1, doc.Find("ul.points li").Length())
	assert.Equal(t, "</li><li>injected", doc.Find("ul.points li").First().Text())
	assert.Equal(t, `"><img src=x onerror=alert(1)>`, doc.Find(".concept dt").First().Text())
	assert.Equal(t, "</script><script>alert(1)</script>", doc.Find("#q-0-opt-1").Text())
}

func TestRenderSectionOrder(t *testing.T) {
	_, doc := renderDoc(t, sampleSheet(), models.ExportContext{})

	assert.Equal(t, []string{"panel-points", "panel-concepts", "panel-activity", "panel-quiz"}, panelIDs(doc))

	var headings []string
	doc.Find("section.panel h2").Each(func(_ int, s *goquery.Selection) {
		headings = append(headings, s.Text())
	})
	assert.Equal(t, []string{HeadingPoints, HeadingConcepts, HeadingActivity, HeadingQuiz}, headings)

	// The header precedes every panel.
	first := doc.Find("main.sheet").Children().First()
	assert.True(t, first.Is("header#sheet-header"))
	assert.Equal(t, 2, doc.Find("ol.steps li").Length())
}

func TestRenderOmitsEmptyActivityFlow(t *testing.T) {
	sheet := sampleSheet()
	sheet.ActivityFlow = nil
	out, doc := renderDoc(t, sheet, models.ExportContext{})

	assert.Equal(t, []string{"panel-points", "panel-concepts", "panel-quiz"}, panelIDs(doc))
	assert.NotContains(t, out, "Déroulement")
	assert.Equal(t, 0, doc.Find("#panel-activity").Length())
	assert.Equal(t, 0, doc.Find("ol.steps").Length())
}

func TestRenderFirstPanelOpenOnly(t *testing.T) {
	_, doc := renderDoc(t, sampleSheet(), models.ExportContext{})

	open := doc.Find("section.panel.is-open")
	require.Equal(t, 1, open.Length())
	id, _ := open.Attr("id")
	assert.Equal(t, "panel-points", id)

	doc.Find("button.panel-toggle").Each(func(i int, s *goquery.Selection) {
		expanded, _ := s.Attr("aria-expanded")
		if i == 0 {
			assert.Equal(t, "true", expanded)
		} else {
			assert.Equal(t, "false", expanded)
		}
		target, _ := s.Attr("data-target")
		assert.Equal(t, 1, doc.Find("#"+target).Length(), "toggle %d must point at an existing panel", i)
	})
}

func TestRenderQuizMarkup(t *testing.T) {
	_, doc := renderDoc(t, sampleSheet(), models.ExportContext{})

	assert.Equal(t, 3, doc.Find("li.quiz-question").Length())
	assert.Equal(t, 9, doc.Find("button.quiz-option").Length())
	assert.Equal(t, 1, doc.Find("#quiz-submit").Length())
	assert.Equal(t, 1, doc.Find("#quiz-reset").Length())

	opt := doc.Find("#q-2-opt-1")
	q, _ := opt.Attr("data-question")
	o, _ := opt.Attr("data-option")
	assert.Equal(t, "2", q)
	assert.Equal(t, "1", o)
	assert.Equal(t, "Eau", opt.Text())
}

func TestRenderIsSelfContained(t *testing.T) {
	out, doc := renderDoc(t, sampleSheet(), models.ExportContext{})

	assert.Equal(t, 0, doc.Find("script[src]").Length())
	assert.Equal(t, 1, doc.Find(`link[rel="stylesheet"]`).Length())
	assert.Equal(t, 1, doc.Find("style").Length())
	assert.Contains(t, out, "var FicheQuiz")
	assert.Contains(t, out, "var QUIZ_DATA")
}

func TestRenderPrintRules(t *testing.T) {
	out, doc := renderDoc(t, sampleSheet(), models.ExportContext{})

	idx := strings.Index(out, "@media print")
	require.GreaterOrEqual(t, idx, 0)
	printCSS := out[idx:]
	assert.Contains(t, printCSS, ".panel .panel-body { display: block !important; max-height: none !important; overflow: visible !important; }")
	assert.Contains(t, printCSS, ".panel-toggle, .quiz-actions, .quiz-submit, .quiz-reset { display: none !important; }")
	assert.Contains(t, printCSS, "#panel-quiz { break-before: page; page-break-before: always; }")

	// Every non-option control carries a class hidden in print.
	doc.Find("button").Not(".quiz-option").Each(func(_ int, s *goquery.Selection) {
		assert.True(t, s.HasClass("panel-toggle") || s.HasClass("quiz-submit") || s.HasClass("quiz-reset"))
	})
}

func TestRenderHeaderContext(t *testing.T) {
	ctx := models.ExportContext{
		LogoURL:            "https://cdn.example.test/logo.png",
		SequenceNumber:     "4",
		ActivityNumber:     "2",
		BackgroundImageURL: "data:image/jpeg;base64,AAAA",
	}
	_, doc := renderDoc(t, sampleSheet(), ctx)

	assert.Equal(t, "Séquence 4 · Activité 2", doc.Find("#sheet-subtitle").Text())
	src, _ := doc.Find("#sheet-logo").Attr("src")
	assert.Equal(t, "https://cdn.example.test/logo.png", src)
	assert.True(t, doc.Find("body").HasClass("has-background"))
	style, _ := doc.Find("body").Attr("style")
	assert.Contains(t, style, "data:image/jpeg;base64,AAAA")
}

func TestRenderHeaderWithoutContext(t *testing.T) {
	_, doc := renderDoc(t, sampleSheet(), models.ExportContext{SequenceNumber: "4", LogoURL: "javascript:alert(1)"})

	assert.Equal(t, 0, doc.Find("#sheet-subtitle").Length())
	assert.Equal(t, 0, doc.Find("#sheet-logo").Length())
	assert.True(t, doc.Find("body").HasClass("plain-background"))
	_, hasStyle := doc.Find("body").Attr("style")
	assert.False(t, hasStyle)
}

func TestRenderEmptySheet(t *testing.T) {
	_, doc := renderDoc(t, &models.StudySheet{Title: "Vide"}, models.ExportContext{})
	assert.Equal(t, []string{"panel-points", "panel-concepts", "panel-quiz"}, panelIDs(doc))
	assert.Equal(t, 0, doc.Find("li.quiz-question").Length())
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title, want string
	}{
		{"Révision: Chapitre 1 & 2!", "fiche-synthese-r_vision__chapitre_1___2_.html"},
		{"Biologie", "fiche-synthese-biologie.html"},
		{"ABC 123", "fiche-synthese-abc_123.html"},
		{"", "fiche-synthese-.html"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewCooldown(300 * time.Millisecond)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Acquire("sheet-1"))
	assert.ErrorIs(t, c.Acquire("sheet-1"), ErrCooldown)
	assert.NoError(t, c.Acquire("sheet-2"), "keys are independent")

	now = now.Add(299 * time.Millisecond)
	assert.ErrorIs(t, c.Acquire("sheet-1"), ErrCooldown)

	now = now.Add(time.Millisecond)
	assert.NoError(t, c.Acquire("sheet-1"))

	c.Release("sheet-1")
	assert.NoError(t, c.Acquire("sheet-1"), "release allows an immediate retry")
}
