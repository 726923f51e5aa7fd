package walker

import (
	"fmt"

	"github.com/starford/nnote/internal/apperr"
)

// CorruptEntryError reports a file named like a note whose identifier
// does not decode. It matches apperr.ErrCorruptEntry and the decode error.
type CorruptEntryError struct {
	Path string
	Err  error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("corrupt entry %s: %v", e.Path, e.Err)
}

func (e *CorruptEntryError) Unwrap() []error {
	return []error{apperr.ErrCorruptEntry, e.Err}
}
