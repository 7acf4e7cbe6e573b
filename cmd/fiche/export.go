package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"fichesynthese/internal/export"
	"fichesynthese/internal/models"

	"github.com/spf13/cobra"
)

// openFile launches the platform viewer for path.
var openFile = func(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <sheet.json>",
		Short: "Export a study sheet as a standalone HTML document",
		Long: `Renders a study sheet (a bare sheet or a record as returned by the API) into a single
HTML file with embedded style and script. The document works offline.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}
	cmd.Flags().StringP("output", "o", "", "output file (defaults to fiche-synthese-<title>.html)")
	cmd.Flags().Bool("open", false, "open the document in the default viewer")
	cmd.Flags().String("sequence", "", "sequence number shown in the header")
	cmd.Flags().String("activity", "", "activity number shown in the header")
	cmd.Flags().String("logo", "", "logo image URL")
	cmd.Flags().String("background", "", "background image URL")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	sheet, ctx, err := readSheetFile(args[0])
	if err != nil {
		return err
	}
	for flag, dst := range map[string]*string{
		"sequence":   &ctx.SequenceNumber,
		"activity":   &ctx.ActivityNumber,
		"logo":       &ctx.LogoURL,
		"background": &ctx.BackgroundImageURL,
	} {
		if cmd.Flags().Changed(flag) {
			*dst, _ = cmd.Flags().GetString(flag)
		}
	}

	doc, err := export.Render(sheet, ctx)
	if err != nil {
		return fmt.Errorf("rendering study sheet: %w", err)
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		out = export.Filename(sheet.Title)
	}
	if err := writeFileAtomic(out, []byte(doc)); err != nil {
		return err
	}
	log.Info("study sheet exported", "path", out, "bytes", len(doc))
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if open, _ := cmd.Flags().GetBool("open"); open {
		abs, err := filepath.Abs(out)
		if err != nil {
			abs = out
		}
		if err := openFile(abs); err != nil {
			log.Warn("could not open viewer", "path", abs, "error", err)
			fmt.Fprintln(cmd.ErrOrStderr(), export.SurfaceDeniedNotice)
		}
	}
	return nil
}

// readSheetFile accepts either a bare study sheet or a stored record
// ({"id", "sheet", "context"}).
func readSheetFile(path string) (*models.StudySheet, models.ExportContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.ExportContext{}, fmt.Errorf("reading %s: %w", path, err)
	}

	var record struct {
		Sheet   *models.StudySheet   `json:"sheet"`
		Context models.ExportContext `json:"context"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, models.ExportContext{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	sheet := record.Sheet
	if sheet == nil {
		sheet = &models.StudySheet{}
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(sheet); err != nil {
			return nil, models.ExportContext{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	if err := sheet.Validate(); err != nil {
		return nil, models.ExportContext{}, fmt.Errorf("%s: %w", path, err)
	}
	return sheet, record.Context, nil
}

// writeFileAtomic writes through a temporary file so a failed export never
// leaves a partial document behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fiche-*.html")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
