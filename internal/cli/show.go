package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/store"
)

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database       string
	Representation string // dump one stored representation instead of the summary
}

// HistoryEntry is one provenance row in show output.
type HistoryEntry struct {
	SaveID   string `json:"save_id"`
	Source   string `json:"source"`
	Notation string `json:"notation"`
	SavedAt  string `json:"saved_at"`
}

// ShowReport describes one archived model.
type ShowReport struct {
	Hash            string            `json:"hash"`
	Name            string            `json:"name,omitempty"`
	Nodes           int               `json:"nodes"`
	Edges           int               `json:"edges"`
	Resources       int               `json:"resources"`
	Metadata        map[string]string `json:"metadata,omitempty"`
	Representations []string          `json:"representations,omitempty"`
	History         []HistoryEntry    `json:"history"`
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Show an archived model and its save history",
		Long: `Show an archived model: structure summary, metadata, stored
representations, and the full save history for its content hash.

With --representation, the stored source text for that format is written
verbatim to stdout instead.

Example:
  pir show 59f2...
  pir show 59f2... --representation flow+yaml > restored.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (default from config)")
	cmd.Flags().StringVar(&opts.Representation, "representation", "", "dump the stored source for this format")

	return cmd
}

func runShow(opts *ShowOptions, hash string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, dbPath, err := openArchive(opts.RootOptions, opts.Database)
	if err != nil {
		return outputArchiveError(formatter, err)
	}
	defer st.Close()
	formatter.VerboseLog("Reading archive %s", dbPath)

	ctx := cmd.Context()

	if opts.Representation != "" {
		body, err := st.LoadRepresentation(ctx, hash, opts.Representation)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return outputCommandError(formatter, ErrCodeNotFound,
					fmt.Sprintf("no %s representation archived for %s", opts.Representation, hash))
			}
			return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("loading representation: %v", err))
		}
		fmt.Fprint(cmd.OutOrStdout(), body)
		return nil
	}

	m, err := st.LoadModel(ctx, hash)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return outputCommandError(formatter, ErrCodeNotFound, fmt.Sprintf("model %s not found in archive", hash))
		}
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("loading model: %v", err))
	}

	history, err := st.History(ctx, hash)
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("loading history: %v", err))
	}

	report := ShowReport{
		Hash:            hash,
		Name:            m.Metadata["process_name"],
		Nodes:           len(m.Nodes),
		Edges:           len(m.Edges),
		Resources:       len(m.Resources),
		Metadata:        m.Metadata,
		Representations: representationFormats(m.Representations),
		History:         historyEntries(history),
	}
	return outputShow(formatter, report)
}

func representationFormats(reps map[string]string) []string {
	if len(reps) == 0 {
		return nil
	}
	formats := make([]string, 0, len(reps))
	for format := range reps {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func historyEntries(entries []store.SaveEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntry{
			SaveID:   e.SaveID,
			Source:   e.Source,
			Notation: e.Notation,
			SavedAt:  e.SavedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}

func outputShow(formatter *OutputFormatter, report ShowReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Model %s\n", report.Hash)
	if report.Name != "" {
		fmt.Fprintf(w, "  name: %s\n", report.Name)
	}
	fmt.Fprintf(w, "  nodes: %d  edges: %d  resources: %d\n", report.Nodes, report.Edges, report.Resources)
	if len(report.Representations) > 0 {
		fmt.Fprintf(w, "  representations: %v\n", report.Representations)
	}
	fmt.Fprintln(w)

	if len(report.Metadata) > 0 {
		fmt.Fprintln(w, "Metadata:")
		for _, key := range sortedMetadataKeys(report.Metadata) {
			fmt.Fprintf(w, "  %s: %s\n", key, report.Metadata[key])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "History:")
	for _, e := range report.History {
		fmt.Fprintf(w, "  %s  %-10s %s\n", e.SavedAt, e.Notation, e.Source)
	}
	return nil
}
