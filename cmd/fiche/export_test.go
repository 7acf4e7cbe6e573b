package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fichesynthese/internal/export"
	"fichesynthese/internal/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, dir, name string, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func cliSheet() models.StudySheet {
	return models.StudySheet{
		Title:         "Les fractions",
		SummaryPoints: []string{"Une fraction représente une partie d'un tout."},
		KeyConcepts:   []models.KeyConcept{{Term: "Numérateur", Definition: "Nombre au-dessus du trait."}},
		Quiz: []models.QuizQuestion{
			{Question: "1/2 + 1/2 ?", Options: []string{"1", "2"}, CorrectAnswer: "1"},
		},
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestExportBareSheet(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "sheet.json", cliSheet())
	out := filepath.Join(dir, "out.html")

	stdout, _, err := execute(t, "export", in, "-o", out, "--sequence", "3", "--activity", "1")
	require.NoError(t, err)
	assert.Equal(t, out+"\n", stdout)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	require.NoError(t, err)
	assert.Equal(t, "Les fractions", doc.Find("#sheet-title").Text())
	assert.Equal(t, "Séquence 3 · Activité 1", doc.Find("#sheet-subtitle").Text())
}

func TestExportRecordUsesStoredContext(t *testing.T) {
	dir := t.TempDir()
	rec := models.SheetRecord{
		Sheet:   cliSheet(),
		Context: models.ExportContext{SequenceNumber: "2", ActivityNumber: "4"},
	}
	in := writeJSON(t, dir, "record.json", rec)
	out := filepath.Join(dir, "out.html")

	_, _, err := execute(t, "export", in, "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Séquence 2 · Activité 4")
}

func TestExportDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "sheet.json", cliSheet())
	t.Chdir(dir)

	stdout, _, err := execute(t, "export", in)
	require.NoError(t, err)
	assert.Equal(t, "fiche-synthese-les_fractions.html\n", stdout)
	_, err = os.Stat(filepath.Join(dir, "fiche-synthese-les_fractions.html"))
	assert.NoError(t, err)
}

func TestExportRejectsInvalidSheet(t *testing.T) {
	dir := t.TempDir()
	bad := cliSheet()
	bad.Quiz[0].CorrectAnswer = "3"
	in := writeJSON(t, dir, "sheet.json", bad)
	out := filepath.Join(dir, "out.html")

	_, _, err := execute(t, "export", in, "-o", out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no partial document may be written")
}

func TestExportOpenDeniedPrintsNotice(t *testing.T) {
	dir := t.TempDir()
	in := writeJSON(t, dir, "sheet.json", cliSheet())
	out := filepath.Join(dir, "out.html")

	orig := openFile
	t.Cleanup(func() { openFile = orig })
	var opened string
	openFile = func(path string) error {
		opened = path
		return errors.New("exec: \"xdg-open\": executable file not found in $PATH")
	}

	_, stderr, err := execute(t, "export", in, "-o", out, "--open")
	require.NoError(t, err, "a refused viewer is not an export failure")
	assert.Equal(t, out, opened)
	assert.Equal(t, export.SurfaceDeniedNotice, strings.TrimSpace(stderr))
	_, statErr := os.Stat(out)
	assert.NoError(t, statErr)
}

func TestExportMissingFile(t *testing.T) {
	_, _, err := execute(t, "export", filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
