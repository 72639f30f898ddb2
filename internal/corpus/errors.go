package corpus

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a page path is not part of the corpus.
var ErrNotFound = errors.New("page not found")

// FrontMatterError reports a page whose front matter block could not be decoded.
type FrontMatterError struct {
	Path string
	Err  error
}

func (e *FrontMatterError) Error() string {
	return fmt.Sprintf("%s: invalid front matter: %v", e.Path, e.Err)
}

func (e *FrontMatterError) Unwrap() error {
	return e.Err
}
