package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"fichesynthese/internal/config"
	"fichesynthese/internal/gemini"
	"fichesynthese/internal/models"

	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <course>",
		Short: "Generate a study sheet from a course document",
		Long: `Sends the course (image, PDF or PowerPoint) and an optional TD to Gemini and writes the
resulting study sheet as JSON. Requires FICHE_GEMINI_API_KEY or GEMINI_API_KEY.`,
		Args: cobra.ExactArgs(1),
		RunE: runGenerate,
	}
	cmd.Flags().String("td", "", "optional TD (worksheet) document")
	cmd.Flags().StringP("output", "o", "", "output file (defaults to stdout)")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	log, err := commandLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return errors.New("FICHE_GEMINI_API_KEY (or GEMINI_API_KEY) must be set")
	}

	course, err := openDocument(args[0])
	if err != nil {
		return err
	}
	var td *gemini.DocumentFile
	if path, _ := cmd.Flags().GetString("td"); path != "" {
		if td, err = openDocument(path); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GenerationTimeout())
	defer cancel()

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GenerationTimeout(), log)
	if err != nil {
		return err
	}
	defer client.Close()

	sheet, err := client.GenerateStudySheet(ctx, *course, td)
	if err != nil {
		return fmt.Errorf("generating study sheet: %w", err)
	}
	return writeSheet(cmd, sheet)
}

func openDocument(path string) (*gemini.DocumentFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return gemini.NewDocumentFile(f, path)
}

func writeSheet(cmd *cobra.Command, sheet *models.StudySheet) error {
	data, err := json.MarshalIndent(sheet, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
