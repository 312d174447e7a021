package dataset

import (
	"context"
	"fmt"

	"github.com/pbanos/sapling/feature"
)

/*
Validate takes a context, a dataset and the features its rows are expected
to have and checks the dataset can be split: it must have rows, all of the
same width, with an identifier and a label after the feature columns.

When features are given, the rows must have exactly one column per feature
plus identifier and label, and every value must be valid for its feature.
Otherwise every feature column must hold values of the same kind (numeric
or not) as the first row.

It returns ErrEmptyDataset for datasets without rows and a
*feature.SchemaMismatchError pointing at the offending row and column for
inconsistent ones.
*/
func Validate(ctx context.Context, s Dataset, features []feature.Feature) error {
	rows, err := s.Rows(ctx)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrEmptyDataset
	}
	width := rows[0].Width()
	if features != nil {
		width = len(features) + 2
	}
	if width < 2 {
		return &feature.SchemaMismatchError{Row: 0, Column: 0, Width: rows[0].Width(), Reason: "rows need an identifier and a label column"}
	}
	for i, r := range rows {
		if r.Width() != width {
			column := r.Width()
			if column > width {
				column = width
			}
			return &feature.SchemaMismatchError{Row: i, Column: column, Width: r.Width(), Reason: fmt.Sprintf("expected %d columns", width)}
		}
		for j := 0; j < width-2; j++ {
			if features != nil {
				if ok, err := features[j].Valid(r[j]); !ok {
					return &feature.SchemaMismatchError{Row: i, Column: j, Width: r.Width(), Reason: err.Error()}
				}
				continue
			}
			if numeric(r[j]) != numeric(rows[0][j]) {
				return &feature.SchemaMismatchError{Row: i, Column: j, Width: r.Width(), Reason: fmt.Sprintf("value %v of type %T differs in kind from the first row's %T", r[j], r[j], rows[0][j])}
			}
		}
	}
	return nil
}

func numeric(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}
