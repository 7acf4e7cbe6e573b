package main

import (
	"fichesynthese/internal/logger"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fiche",
		Short:         "Study sheet generator and exporter",
		Long:          "fiche turns course documents into study sheets and exports them as self-contained HTML documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")
	root.PersistentFlags().String("env-file", ".env", "optional .env file to load")

	root.AddCommand(newExportCmd())
	root.AddCommand(newGenerateCmd())
	return root
}

// commandLogger returns a development logger with --verbose, otherwise a
// logger that discards everything.
func commandLogger(cmd *cobra.Command) (*logger.Logger, error) {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return logger.New("dev")
	}
	return logger.Nop(), nil
}
