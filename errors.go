package folio

import (
	"errors"
	"fmt"
)

// Errors returned by command execution. They are wrapped with the details of the
// failure, use errors.Is to test them.
var (
	// ErrSyntax reports a command line that cannot be mapped to a known command.
	ErrSyntax = errors.New("syntax error")
	// ErrDuplicate reports an identifier collision.
	ErrDuplicate = errors.New("duplicate")
	// ErrUnitMismatch reports a quantity that exceeds the units still available.
	ErrUnitMismatch = errors.New("unit mismatch")
	// ErrNotFound reports a reference to an unknown entity.
	ErrNotFound = errors.New("not found")
	// ErrRefused reports a structural refusal: an entity still has dependents, or is closed.
	ErrRefused = errors.New("refused")
	// ErrInternal reports an unexpected failure caught at the command boundary.
	ErrInternal = errors.New("internal error")
)

// ParamError reports an invalid command parameter.
type ParamError struct {
	Param string // Param is the parameter name.
	Rule  string // Rule describes the violated rule.
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("parameter %s: %s", e.Param, e.Rule)
}

func paramErr(param, format string, args ...any) error {
	return &ParamError{Param: param, Rule: fmt.Sprintf(format, args...)}
}
