package catalog

import (
	"errors"
	"fmt"
)

// ErrInvalid marks a request rejected by input validation. Transport maps
// it to 400; wrap it with the field-level detail.
var ErrInvalid = errors.New("invalid input")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}
