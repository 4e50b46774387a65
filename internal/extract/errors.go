package extract

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
)

// SourceNotFoundError is returned when an input extract does not exist.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("source not found: %s", e.Path)
}

func (e *SourceNotFoundError) Unwrap() error { return e.Err }

// SchemaError is returned when an extract lacks a field the loader needs.
type SchemaError struct {
	Source string
	Field  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required field %q is missing", e.Source, e.Field)
}

// openSource opens path for reading, translating a missing file into a
// SourceNotFoundError.
func openSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.WithHint(&SourceNotFoundError{Path: path, Err: err},
				"pass --neofile/--cadfile or set data.neo_file/data.cad_file")
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	return f, nil
}
