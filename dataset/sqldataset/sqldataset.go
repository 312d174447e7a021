/*
Package sqldataset reads and writes datasets from and to SQL databases.

Rows are stored on a samples table with one column per feature, named after
the feature, followed by an id and a label column. Continuous features are
stored as floating point numbers, discrete ones as text.
*/
package sqldataset

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

const (
	// TableName is the name of the table rows are kept on
	TableName = "samples"
	idColumn  = "id"
	// LabelColumn is the name of the column with the label of each row
	LabelColumn = "label"
)

/*
Adapter is an interface providing the database specific
bits needed to read and write datasets.
*/
type Adapter interface {
	// DB returns the database handle to run statements on.
	DB() *sql.DB
	// ColumnName returns the quoted column name for a feature, or an error if
	// the name cannot be used as a column.
	ColumnName(string) (string, error)
	// Placeholder returns the placeholder for the n-th (from 1) statement argument.
	Placeholder(int) string
	// ColumnType returns the column type for continuous features
	// (true) or for text columns (false).
	ColumnType(continuous bool) string
	// OrderBy returns the expression rows are read ordered by, or an empty
	// string if the database offers no insertion order.
	OrderBy() string
	Close() error
}

/*
Read takes a context, an Adapter and a slice of features and returns a dataset
with the rows on the samples table of the adapter's database. It returns an
error if the rows cannot be read or do not hold valid values for the features.
*/
func Read(ctx context.Context, a Adapter, features []feature.Feature) (dataset.Dataset, error) {
	columns, err := columnNames(a, features)
	if err != nil {
		return nil, err
	}
	var query bytes.Buffer
	query.WriteString("SELECT ")
	for _, c := range columns {
		query.WriteString(c)
		query.WriteString(", ")
	}
	fmt.Fprintf(&query, "%s, %s FROM %s", quote(idColumn), quote(LabelColumn), TableName)
	if ob := a.OrderBy(); ob != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(ob)
	}
	sqlRows, err := a.DB().QueryContext(ctx, query.String())
	if err != nil {
		return nil, errors.Wrapf(err, "querying %s table", TableName)
	}
	defer sqlRows.Close()
	var rows []dataset.Row
	for i := 0; sqlRows.Next(); i++ {
		continuous := make([]sql.NullFloat64, len(features))
		discrete := make([]sql.NullString, len(features))
		var id, label string
		dest := make([]interface{}, 0, len(features)+2)
		for j, f := range features {
			if _, ok := f.(*feature.ContinuousFeature); ok {
				dest = append(dest, &continuous[j])
			} else {
				dest = append(dest, &discrete[j])
			}
		}
		dest = append(dest, &id, &label)
		err = sqlRows.Scan(dest...)
		if err != nil {
			return nil, errors.Wrapf(err, "scanning row %d", i)
		}
		row := make(dataset.Row, 0, len(features)+2)
		for j, f := range features {
			var v interface{}
			if _, ok := f.(*feature.ContinuousFeature); ok {
				if continuous[j].Valid {
					v = continuous[j].Float64
				}
			} else if discrete[j].Valid {
				v = discrete[j].String
			}
			if v == nil {
				return nil, &feature.SchemaMismatchError{Row: i, Column: j, Width: len(features) + 2, Reason: fmt.Sprintf("missing value for feature %s", f.Name())}
			}
			row = append(row, v)
		}
		rows = append(rows, append(row, id, label))
	}
	if err = sqlRows.Err(); err != nil {
		return nil, errors.Wrapf(err, "iterating over %s table", TableName)
	}
	ds := dataset.New(rows)
	if len(rows) > 0 {
		if err = dataset.Validate(ctx, ds, features); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

/*
Write takes a context, an Adapter, a dataset and a slice of features and
stores the rows of the dataset on the samples table of the adapter's database,
creating it if it does not exist. All rows are inserted within one transaction.
*/
func Write(ctx context.Context, a Adapter, ds dataset.Dataset, features []feature.Feature) (int, error) {
	columns, err := columnNames(a, features)
	if err != nil {
		return 0, err
	}
	rows, err := ds.Rows(ctx)
	if err != nil {
		return 0, err
	}
	var create bytes.Buffer
	fmt.Fprintf(&create, "CREATE TABLE IF NOT EXISTS %s (", TableName)
	for i, c := range columns {
		_, continuous := features[i].(*feature.ContinuousFeature)
		fmt.Fprintf(&create, "%s %s NOT NULL, ", c, a.ColumnType(continuous))
	}
	fmt.Fprintf(&create, "%s %s NOT NULL, %s %s NOT NULL)", quote(idColumn), a.ColumnType(false), quote(LabelColumn), a.ColumnType(false))
	if _, err = a.DB().ExecContext(ctx, create.String()); err != nil {
		return 0, errors.Wrapf(err, "creating %s table", TableName)
	}

	var insert bytes.Buffer
	fmt.Fprintf(&insert, "INSERT INTO %s (", TableName)
	for _, c := range columns {
		insert.WriteString(c)
		insert.WriteString(", ")
	}
	fmt.Fprintf(&insert, "%s, %s) VALUES (", quote(idColumn), quote(LabelColumn))
	for i := 1; i <= len(columns)+2; i++ {
		if i > 1 {
			insert.WriteString(", ")
		}
		insert.WriteString(a.Placeholder(i))
	}
	insert.WriteString(")")

	tx, err := a.DB().BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrapf(err, "starting transaction")
	}
	stmt, err := tx.PrepareContext(ctx, insert.String())
	if err != nil {
		tx.Rollback()
		return 0, errors.Wrapf(err, "preparing insert statement")
	}
	defer stmt.Close()
	for i, r := range rows {
		if r.Width() != len(columns)+2 {
			tx.Rollback()
			return 0, &feature.SchemaMismatchError{Row: i, Column: r.Width(), Width: r.Width(), Reason: fmt.Sprintf("expected %d values", len(columns)+2)}
		}
		args := make([]interface{}, 0, r.Width())
		args = append(args, r[:len(columns)]...)
		args = append(args, r.ID(), r.Label())
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			tx.Rollback()
			return 0, errors.Wrapf(err, "inserting row %d", i)
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, errors.Wrapf(err, "committing %d rows", len(rows))
	}
	return len(rows), nil
}

func columnNames(a Adapter, features []feature.Feature) ([]string, error) {
	columns := make([]string, len(features))
	for i, f := range features {
		if f.Name() == idColumn || f.Name() == LabelColumn {
			return nil, fmt.Errorf("'%s' is reserved and cannot be used as feature name", f.Name())
		}
		c, err := a.ColumnName(f.Name())
		if err != nil {
			return nil, err
		}
		columns[i] = c
	}
	return columns, nil
}

func quote(name string) string {
	return fmt.Sprintf(`"%s"`, name)
}
