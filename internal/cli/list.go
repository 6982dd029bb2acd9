package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/store"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Database string
}

// ModelListing is one row of the archive listing.
type ModelListing struct {
	Hash        string `json:"hash"`
	Name        string `json:"name,omitempty"`
	Saves       int    `json:"saves"`
	LastSavedAt string `json:"last_saved_at"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived models",
		Long: `List every model in the archive, most recently saved first.

Example:
  pir list
  pir list --db ./models.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to archive database (default from config)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command) error {
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
	formatter.VerboseLog("Listing archive %s", dbPath)

	infos, err := st.ListModels(cmd.Context())
	if err != nil {
		return outputCommandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("listing models: %v", err))
	}

	listings := make([]ModelListing, len(infos))
	for i, info := range infos {
		listings[i] = ModelListing{
			Hash:        info.Hash,
			Name:        info.Name,
			Saves:       info.Saves,
			LastSavedAt: info.LastSavedAt.UTC().Format(time.RFC3339),
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(listings)
	}

	if len(listings) == 0 {
		fmt.Fprintln(formatter.Writer, "archive is empty")
		return nil
	}

	for _, l := range listings {
		name := l.Name
		if name == "" {
			name = "(unnamed)"
		}
		fmt.Fprintf(formatter.Writer, "%s  %-24s  %d save(s)  %s\n",
			shortHash(l.Hash), name, l.Saves, l.LastSavedAt)
	}
	return nil
}

// openArchive resolves the database path and opens an existing archive.
// Unlike save, read commands refuse to create an empty database.
func openArchive(opts *RootOptions, flagValue string) (*store.Store, string, error) {
	dbPath, err := opts.DatabasePath(flagValue)
	if err != nil {
		return nil, "", &LoadError{Code: ErrCodeStoreFailed, Message: err.Error()}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, "", &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("archive database not found: %s", dbPath)}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, "", &LoadError{Code: ErrCodeStoreFailed, Message: fmt.Sprintf("opening archive %s: %v", dbPath, err)}
	}
	return st, dbPath, nil
}

// outputArchiveError prints an archive access failure as a command error.
func outputArchiveError(f *OutputFormatter, err error) error {
	return outputLoadError(f, err)
}

// shortHash trims a content hash for single-line listings.
func shortHash(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}
