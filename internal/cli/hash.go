package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/model"
)

// HashOptions holds flags for the hash command.
type HashOptions struct {
	*RootOptions
	Notation string
}

// HashResult pairs a document with its canonical content hash.
type HashResult struct {
	File string `json:"file"`
	Hash string `json:"hash"`
}

// NewHashCommand creates the hash command.
func NewHashCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HashOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "hash <file>",
		Short: "Print a document's canonical content hash",
		Long: `Parse a process document and print its canonical content hash.

The hash is computed over the canonical serialization of the model, so
semantically identical documents hash the same regardless of notation
quirks like map ordering. Use "-" to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Notation, "notation", "", "input notation (skips detection)")

	return cmd
}

func runHash(opts *HashOptions, file string, cmd *cobra.Command) error {
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

	hash, err := model.Hash(doc.Model)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing model: %v", err))
	}

	if formatter.Format == "json" {
		return formatter.Success(HashResult{File: doc.Path, Hash: hash})
	}

	// Bare hash on stdout keeps the text form scriptable.
	fmt.Fprintln(formatter.Writer, hash)
	return nil
}
