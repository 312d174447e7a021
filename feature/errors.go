package feature

import "fmt"

/*
SchemaMismatchError is returned when a row does not have the shape a
dataset or a question expects: a different width, a value of the wrong kind
on a column, or a missing column.

Row is the index of the offending row in its dataset, or -1 when the row
is not part of one (e.g. a row being classified).
*/
type SchemaMismatchError struct {
	Row    int
	Column int
	Width  int
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("schema mismatch on column %d (row width %d): %s", e.Column, e.Width, e.Reason)
	}
	return fmt.Sprintf("schema mismatch on row %d, column %d (row width %d): %s", e.Row, e.Column, e.Width, e.Reason)
}
