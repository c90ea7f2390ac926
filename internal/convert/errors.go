package convert

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrInvalidValue = errors.New("invalid value")
)

// LookupError reports a category or unit missing from the conversion tables.
// An empty Unit means the category itself was not found.
type LookupError struct {
	Category Category
	Unit     string
}

func (e *LookupError) Error() string {
	switch {
	case e.Unit == "":
		return fmt.Sprintf("unknown category %q", string(e.Category))
	case e.Category == "":
		return fmt.Sprintf("unknown unit %q", e.Unit)
	default:
		return fmt.Sprintf("unknown unit %q for category %s", e.Unit, e.Category)
	}
}

func (e *LookupError) Is(target error) bool {
	return target == ErrUnknownUnit
}
