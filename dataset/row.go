package dataset

import (
	"fmt"

	"github.com/pbanos/sapling/feature"
)

/*
Row is an example to learn from or to classify: the values for each
feature, in column order, followed by an identifier (e.g. the path of
the file the features were extracted from) and a label.

Numeric feature values are float64, categorical ones are strings.
*/
type Row []interface{}

/*
NewRow takes the values of a row and returns it, storing integer and float32
values as float64 so they are treated as numeric.
*/
func NewRow(values ...interface{}) Row {
	r := make(Row, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case int:
			r[i] = float64(n)
		case int32:
			r[i] = float64(n)
		case int64:
			r[i] = float64(n)
		case float32:
			r[i] = float64(n)
		default:
			r[i] = v
		}
	}
	return r
}

/*
ValueAt returns the value on the given column or a
*feature.SchemaMismatchError if the row has no such column.
*/
func (r Row) ValueAt(column int) (interface{}, error) {
	if column < 0 || column >= len(r) {
		return nil, &feature.SchemaMismatchError{Row: -1, Column: column, Width: len(r), Reason: "column out of range"}
	}
	return r[column], nil
}

// Width returns the number of values in the row, including identifier
// and label.
func (r Row) Width() int {
	return len(r)
}

// FeatureCount returns the number of feature columns of the row.
func (r Row) FeatureCount() int {
	if len(r) < 2 {
		return 0
	}
	return len(r) - 2
}

// Label returns the last value of the row as a string.
func (r Row) Label() string {
	if len(r) == 0 {
		return ""
	}
	return feature.FormatValue(r[len(r)-1])
}

// ID returns the second to last value of the row as a string.
func (r Row) ID() string {
	if len(r) < 2 {
		return ""
	}
	return feature.FormatValue(r[len(r)-2])
}

func (r Row) String() string {
	return fmt.Sprintf("%v", []interface{}(r))
}
