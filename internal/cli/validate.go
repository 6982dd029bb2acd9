package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/validate"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Notation string
	Strict   bool
}

// ValidationReport holds validation results for one document.
type ValidationReport struct {
	File     string             `json:"file"`
	Notation string             `json:"notation"`
	Profile  string             `json:"profile"`
	Valid    bool               `json:"valid"`
	Errors   []validate.Finding `json:"errors,omitempty"`
	Warnings []validate.Finding `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse a process document and report findings",
		Long: `Parse a process document and run structural validation.

Validation collects every finding instead of stopping at the first:
referential errors (unknown edge endpoints, mismatched node keys) and
structural warnings (unreachable nodes, dangling nodes, duplicate edges).
Warnings do not affect validity. Use "-" to read from stdin.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Notation, "notation", "", "input notation (skips detection)")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "treat dangling nodes and duplicate edges as errors")

	return cmd
}

func runValidate(opts *ValidateOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	doc, err := LoadDocument(cmd, file, opts.Notation)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Parsed %s as %s: %d node(s), %d edge(s)",
		doc.Path, doc.Adapter.Name(), len(doc.Model.Nodes), len(doc.Model.Edges))

	profile := validate.DefaultProfile()
	if opts.Strict {
		profile = validate.StrictProfile()
	}
	report := validate.ModelWithProfile(doc.Model, profile)

	result := ValidationReport{
		File:     doc.Path,
		Notation: doc.Adapter.Name(),
		Profile:  profile.Name,
		Valid:    report.Valid(),
		Errors:   report.Errors,
		Warnings: report.Warnings,
	}
	return outputValidation(formatter, result)
}

// outputValidation renders the report and maps invalid documents to the
// failure exit code.
func outputValidation(formatter *OutputFormatter, result ValidationReport) error {
	if formatter.Format == "json" {
		if result.Valid {
			return formatter.Success(result)
		}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (not a command error)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	// Text format
	if result.Valid {
		if len(result.Warnings) == 0 {
			fmt.Fprintf(formatter.Writer, "✓ %s: valid\n", result.File)
		} else {
			fmt.Fprintf(formatter.Writer, "✓ %s: valid, %d warning(s)\n", result.File, len(result.Warnings))
		}
		printFindings(formatter, "Warnings", result.Warnings)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ %s: invalid\n", result.File)
	printFindings(formatter, "Errors", result.Errors)
	printFindings(formatter, "Warnings", result.Warnings)

	// Validation failures = exit code 1 (not a command error)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

func printFindings(formatter *OutputFormatter, header string, findings []validate.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "%s:\n", header)
	for _, f := range findings {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", f.Code, f.Message)
	}
}
