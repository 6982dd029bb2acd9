package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/notation"
	"github.com/roach88/pir/internal/notation/builtin"
)

// Document is one parsed process source: the raw bytes, the adapter that
// claimed them, and the model it produced.
type Document struct {
	Path    string // display path; "<stdin>" when read from standard input
	Source  []byte
	Adapter notation.Adapter
	Model   *model.Model
}

// LoadError represents an error that occurred while reading or parsing an
// input document.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads path ("-" for stdin), picks an adapter, and parses the
// source into a model. An explicit notation name skips detection; otherwise
// the registry detects by filename extension, then by content sniffing.
func LoadDocument(cmd *cobra.Command, path, notationName string) (*Document, error) {
	reg := builtin.Default()

	var (
		src     []byte
		err     error
		display = path
	)
	if path == "-" {
		display = "<stdin>"
		src, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading stdin: %v", err)}
		}
	} else {
		src, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
	}

	var adapter notation.Adapter
	if notationName != "" {
		adapter, err = reg.Get(notationName)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeUnknownNotation, Message: err.Error()}
		}
	} else {
		// Stdin carries no extension, so detection falls through to
		// content sniffing.
		name := ""
		if path != "-" {
			name = path
		}
		adapter, err = reg.Detect(name, src)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeDetectFailed, Message: err.Error()}
		}
	}

	m, err := adapter.Parse(src)
	if err != nil {
		return nil, parseLoadError(adapter, err)
	}

	slog.Debug("document parsed",
		"path", display,
		"notation", adapter.Name(),
		"nodes", len(m.Nodes),
		"edges", len(m.Edges))

	return &Document{Path: display, Source: src, Adapter: adapter, Model: m}, nil
}

// parseLoadError converts an adapter failure into a LoadError. ParseError
// messages already carry the notation name and source line.
func parseLoadError(a notation.Adapter, err error) *LoadError {
	var parseErr *notation.ParseError
	if errors.As(err, &parseErr) {
		return &LoadError{Code: ErrCodeParseFailed, Message: parseErr.Error()}
	}
	return &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing as %s: %v", a.Name(), err)}
}

// outputLoadError prints a load failure and converts it to a command error.
func outputLoadError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = f.Error(loadErr.Code, loadErr.Message, nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message))
	}
	return outputCommandError(f, ErrCodeGeneric, err.Error())
}

// outputCommandError prints an error and wraps it with the command-error
// exit code.
func outputCommandError(f *OutputFormatter, code, message string) error {
	_ = f.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric         = "E001" // Generic/unknown error
	ErrCodeReadFailed      = "E002" // Source read error
	ErrCodeDetectFailed    = "E003" // Notation detection failed
	ErrCodeParseFailed     = "E004" // Notation parse failed
	ErrCodeNotFound        = "E005" // File or archived model not found
	ErrCodeUnknownNotation = "E006" // Named notation not registered
	ErrCodeWriteFailed     = "E007" // File write error
	ErrCodeNoRenderer      = "E008" // Target notation cannot render
	ErrCodeRenderFailed    = "E009" // Render error
	ErrCodeStoreFailed     = "E010" // Archive database error
)
