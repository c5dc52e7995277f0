package twse

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaNotFound means the tabular fallback had no recognizable header row.
	ErrSchemaNotFound = errors.New("schema not found")

	// ErrNoRows means the dataset was fetched but reported no data for the date.
	ErrNoRows = errors.New("dataset has no rows")
)

// SchemaNotFoundError carries the header markers that were searched for.
type SchemaNotFoundError struct {
	Markers []string
	Scanned int
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("schema not found: no line among the first %d contains %s", e.Scanned, strings.Join(e.Markers, " + "))
}

// Is lets errors.Is(err, ErrSchemaNotFound) match.
func (e *SchemaNotFoundError) Is(target error) bool { return target == ErrSchemaNotFound }

// ColumnMissingError names a column absent from a table's fields.
type ColumnMissingError struct {
	Name string
}

func (e *ColumnMissingError) Error() string {
	return fmt.Sprintf("column missing: %q", e.Name)
}
