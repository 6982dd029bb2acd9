package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Input error codes (E100-E119)
const (
	// Node input errors (E100-E104)
	ErrMissingNodeID   = "E100" // node id is required
	ErrMissingNodeKind = "E101" // node kind is required

	// Edge input errors (E105-E109)
	ErrMissingEdgeSource = "E105" // edge source is required
	ErrMissingEdgeTarget = "E106" // edge target is required

	// Map-entry input errors (E110-E114)
	ErrMissingPoolID      = "E110" // resource pool id is required
	ErrMissingMetadataKey = "E111" // metadata key is required
	ErrMissingFormat      = "E112" // representation format is required
	ErrMissingViewID      = "E113" // view id is required
	ErrMissingMappingNode = "E114" // mapping node id is required

	// Strict-mode errors (E115-E119)
	ErrDuplicateNode = "E115" // duplicate node id rejected in strict mode
)

// InputError reports a malformed primitive input to a single builder
// operation. The operation is aborted and prior graph state is untouched;
// structural issues (missing edge targets, unreachable nodes) are never
// InputErrors - those belong to the validator.
type InputError struct {
	Op      string `json:"op"` // builder operation, e.g. "add_node"
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("[%s] %s: %s: %s", e.Code, e.Op, e.Field, e.Message)
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

func newInputError(op, field, code, message string) *InputError {
	return &InputError{Op: op, Field: field, Code: code, Message: message}
}

// inputErrorFromStruct converts a validator.Struct failure on a spec type
// into a coded InputError. Only "required" tags are in play; anything else
// is a programming error and passes through unwrapped.
func inputErrorFromStruct(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	field := verrs[0].Field()
	code, ok := requiredFieldCodes[op+"."+field]
	if !ok {
		return err
	}
	return newInputError(op, strings.ToLower(field),
		code, fmt.Sprintf("%s is required", strings.ToLower(field)))
}

var requiredFieldCodes = map[string]string{
	"add_node.ID":     ErrMissingNodeID,
	"add_node.Kind":   ErrMissingNodeKind,
	"add_edge.Source": ErrMissingEdgeSource,
	"add_edge.Target": ErrMissingEdgeTarget,
	"set_view.ID":     ErrMissingViewID,
}
