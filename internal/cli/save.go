package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/store"
)

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Notation string
	Database string
}

// SaveResult reports an archived document.
type SaveResult struct {
	File    string `json:"file"`
	Hash    string `json:"hash"`
	SaveID  string `json:"save_id"`
	Created bool   `json:"created"` // false when the content was already archived
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Archive a document in the model store",
		Long: `Parse a process document and archive it in the content-addressed store.

Models are stored by canonical hash: re-saving identical content is a
no-op for the model itself but always appends a provenance entry, so
the save history records every import.

Example:
  pir save order.yaml
  pir save order.bpmn --db ./models.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Notation, "notation", "", "input notation (skips detection)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (default from config)")

	return cmd
}

func runSave(opts *SaveOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := LoadDocument(cmd, file, opts.Notation)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	dbPath, err := opts.DatabasePath(opts.Database)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, err.Error())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("creating archive directory: %v", err))
	}

	slog.Debug("opening archive", "path", dbPath)
	st, err := store.Open(dbPath)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("opening archive %s: %v", dbPath, err))
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing archive", "error", closeErr)
		}
	}()

	receipt, err := st.SaveModel(cmd.Context(), doc.Model, doc.Path, doc.Adapter.Name())
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("saving model: %v", err))
	}

	result := SaveResult{
		File:    doc.Path,
		Hash:    receipt.Hash,
		SaveID:  receipt.SaveID,
		Created: receipt.Created,
	}
	return outputSaveSuccess(formatter, result)
}

func outputSaveSuccess(formatter *OutputFormatter, result SaveResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Saved %s\n", result.File)
	fmt.Fprintf(formatter.Writer, "  hash:    %s\n", result.Hash)
	fmt.Fprintf(formatter.Writer, "  save id: %s\n", result.SaveID)
	if !result.Created {
		fmt.Fprintln(formatter.Writer, "  content already archived; provenance recorded")
	}
	return nil
}
