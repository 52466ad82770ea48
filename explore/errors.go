package explore

import (
	"errors"
	"fmt"
)

// A PrecisionError reports that an abstracted value needed for a
// scheduling decision is undetermined. It ends the exploration of the
// affected step only.
type PrecisionError struct {
	What  string // what could not be determined
	Where string // evaluation point
}

func (e *PrecisionError) Error() string {
	if e.Where == "" {
		return "insufficient precision: " + e.What
	}
	return fmt.Sprintf("insufficient precision at %s: %s", e.Where, e.What)
}

func precisionError(where Location, format string, args ...interface{}) error {
	return &PrecisionError{What: fmt.Sprintf(format, args...), Where: where.String()}
}

// ErrMismatch is matched by every *MismatchError.
var ErrMismatch = errors.New("structural mismatch")

// A MismatchError reports arguments that are inconsistent with the
// structure registered under the same identity.
type MismatchError struct {
	Op     string
	Detail string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrMismatch, e.Detail)
}

func (e *MismatchError) Is(target error) bool { return target == ErrMismatch }

// IsPrecision reports whether err is or wraps a *PrecisionError.
func IsPrecision(err error) bool {
	var pe *PrecisionError
	return errors.As(err, &pe)
}
