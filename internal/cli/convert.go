package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/notation"
	"github.com/roach88/pir/internal/notation/builtin"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions
	From string // input notation override
	To   string // target notation; default detected from the output extension
}

// ConversionResult holds the outcome of one conversion.
type ConversionResult struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	From   string `json:"from"`
	To     string `json:"to"`
	Bytes  int    `json:"bytes"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a document between notations",
		Long: `Convert a process document from one notation to another.

The input is parsed into the shared model, then rendered by the target
adapter. The target notation comes from --to, or is detected from the
output filename. Conversion does not validate; run validate separately
when structural guarantees matter.

Example:
  pir convert order.yaml order.bpmn
  pir convert order.bpmn - --to flowyaml`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.From, "notation", "", "input notation (skips detection)")
	cmd.Flags().StringVar(&opts.To, "to", "", "target notation (default: detect from output filename)")

	return cmd
}

func runConvert(opts *ConvertOptions, input, output string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := LoadDocument(cmd, input, opts.From)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	target, err := resolveTarget(opts.To, output)
	if err != nil {
		return outputCommandError(formatter, ErrCodeDetectFailed, err.Error())
	}
	formatter.VerboseLog("Converting %s: %s -> %s", doc.Path, doc.Adapter.Name(), target.Name())

	renderer, ok := target.(notation.Renderer)
	if !ok {
		return outputCommandError(formatter, ErrCodeNoRenderer,
			fmt.Sprintf("notation %q cannot render documents", target.Name()))
	}

	rendered, err := renderer.Render(doc.Model)
	if err != nil {
		return outputCommandError(formatter, ErrCodeRenderFailed,
			fmt.Sprintf("rendering as %s: %v", target.Name(), err))
	}

	if output == "-" {
		if _, err := cmd.OutOrStdout().Write(rendered); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing stdout: %v", err))
		}
		return nil
	}

	if err := os.WriteFile(output, rendered, 0644); err != nil {
		return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing %s: %v", output, err))
	}

	result := ConversionResult{
		Input:  doc.Path,
		Output: output,
		From:   doc.Adapter.Name(),
		To:     target.Name(),
		Bytes:  len(rendered),
	}
	return outputConvertSuccess(formatter, result)
}

// resolveTarget picks the output adapter: explicit --to first, otherwise
// extension-based detection on the output filename. Content sniffing never
// applies to a file that does not exist yet, hence the nil source.
func resolveTarget(to, output string) (notation.Adapter, error) {
	reg := builtin.Default()
	if to != "" {
		return reg.Get(to)
	}
	if output == "-" {
		return nil, fmt.Errorf("cannot detect target notation for stdout; use --to")
	}
	return reg.Detect(output, nil)
}

func outputConvertSuccess(formatter *OutputFormatter, result ConversionResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Converted %s (%s) to %s (%s), %d byte(s)\n",
		result.Input, result.From, result.Output, result.To, result.Bytes)
	return nil
}
