package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

const (
	// IDColumn is the header written for the identifier column
	IDColumn = "id"
	// LabelColumn is the header written for the label column
	LabelColumn = "label"
)

/*
Writer is an interface for a destination to which rows
can be written to.
*/
type Writer interface {
	// Write will attempt to write the given rows
	// and will return the actually written
	// number of rows and an error (if not all rows
	// could be written)
	Write(context.Context, []dataset.Row) (int, error)
	// Count returns the total number of rows written
	// to the writer
	Count() int
	// Flush ensures any pending written operations finish
	// before returning. It returns an error if that cannot
	// be ensured.
	Flush() error
}

type csvWriter struct {
	count    int
	features []feature.Feature
	w        *csv.Writer
}

/*
ReadDataset takes an io.Reader for a CSV stream and a slice of features and
returns a dataset.Dataset with the rows parsed from the reader or an error.

The header or first row of the CSV content is expected to consist of the names
of the features in the given slice, in any order, followed by two columns for
the identifier and the label of each row. Rows are built with feature values
in the order of the given slice. Values for continuous features are parsed as
float64 numbers.
*/
func ReadDataset(reader io.Reader, features []feature.Feature) (dataset.Dataset, error) {
	rows := []dataset.Row{}
	err := ReadRows(reader, features, func(_ int, r dataset.Row) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return dataset.New(rows), nil
}

/*
ReadRows takes an io.Reader for a CSV stream, a slice of features and a
lambda function on an integer and a dataset.Row that returns a boolean value.
It parses the rows from the reader and for each it calls the lambda function
with the row and its index as parameters. If the lambda function returns true,
it will continue processing the next row, otherwise it will stop. An error is
returned if something goes wrong when reading the stream or parsing a row.
*/
func ReadRows(reader io.Reader, features []feature.Feature, lambda func(int, dataset.Row) (bool, error)) error {
	r := csv.NewReader(reader)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("reading header: %v", err)
	}
	order, err := parseHeader(header, features)
	if err != nil {
		return err
	}
	for l := 2; ; l++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading body: %v", err)
		}
		row, err := parseRecord(l-2, record, order, features)
		if err != nil {
			return fmt.Errorf("parsing line %d: %w", l, err)
		}
		ok, err := lambda(l-2, row)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
	}
	return nil
}

/*
ReadDatasetFromFilePath takes a filepath string and a slice of features,
opens the file to which the filepath points to and uses ReadDataset to return
a dataset.Dataset or an error read from it. If the filepath is "" os.Stdin is
read instead.
*/
func ReadDatasetFromFilePath(filepath string, features []feature.Feature) (dataset.Dataset, error) {
	var f *os.File
	var err error
	if filepath == "" {
		f = os.Stdin
	} else {
		f, err = os.Open(filepath)
		if err != nil {
			return nil, fmt.Errorf("opening dataset: %v", err)
		}
		defer f.Close()
	}
	ds, err := ReadDataset(f, features)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV file %s: %w", filepath, err)
	}
	return ds, nil
}

/*
NewWriter takes an io.Writer and a slice of feature.Features and
returns a Writer that will write rows on the io.Writer, after a header
with the names of the features and the identifier and label columns.
*/
func NewWriter(writer io.Writer, features []feature.Feature) (Writer, error) {
	w := csv.NewWriter(writer)
	record := append(feature.Names(features), IDColumn, LabelColumn)
	err := w.Write(record)
	if err != nil {
		return nil, fmt.Errorf("writing CSV header: %v", err)
	}
	return &csvWriter{features: features, w: w}, nil
}

/*
WriteDataset takes a writer, a dataset.Dataset and a slice of features and
dumps to the writer the dataset in CSV format. It returns an error if something
went wrong when writing to the writer, or codifying the rows.
*/
func WriteDataset(ctx context.Context, writer io.Writer, ds dataset.Dataset, features []feature.Feature) error {
	cw, err := NewWriter(writer, features)
	if err != nil {
		return err
	}
	rows, err := ds.Rows(ctx)
	if err != nil {
		return err
	}
	_, err = cw.Write(ctx, rows)
	if err != nil {
		return err
	}
	return cw.Flush()
}

// parseHeader returns for each feature the index of its column in the header.
func parseHeader(header []string, features []feature.Feature) ([]int, error) {
	if len(header) != len(features)+2 {
		return nil, fmt.Errorf("parsing header: expected %d columns (features, identifier and label), got %d", len(features)+2, len(header))
	}
	positions := make(map[string]int)
	for i, name := range header[:len(features)] {
		if _, ok := positions[name]; ok {
			return nil, fmt.Errorf("parsing header: duplicated column %s", name)
		}
		positions[name] = i
	}
	order := make([]int, len(features))
	for i, f := range features {
		p, ok := positions[f.Name()]
		if !ok {
			return nil, fmt.Errorf("parsing header: missing column for feature %s", f.Name())
		}
		order[i] = p
	}
	return order, nil
}

func parseRecord(index int, record []string, order []int, features []feature.Feature) (dataset.Row, error) {
	row := make(dataset.Row, len(features)+2)
	for i, f := range features {
		v := record[order[i]]
		var value interface{} = v
		if _, ok := f.(*feature.ContinuousFeature); ok {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("converting %q to float64 for feature %s: %v", v, f.Name(), err)
			}
			value = n
		}
		if ok, err := f.Valid(value); !ok {
			return nil, &feature.SchemaMismatchError{Row: index, Column: i, Width: len(features) + 2, Reason: err.Error()}
		}
		row[i] = value
	}
	row[len(features)] = record[len(features)]
	row[len(features)+1] = record[len(features)+1]
	return row, nil
}

func (cw *csvWriter) Count() int {
	return cw.count
}

func (cw *csvWriter) Write(ctx context.Context, rows []dataset.Row) (int, error) {
	for n, r := range rows {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := cw.writeRow(r); err != nil {
			return n, err
		}
	}
	return len(rows), nil
}

func (cw *csvWriter) writeRow(r dataset.Row) error {
	if r.Width() != len(cw.features)+2 {
		return &feature.SchemaMismatchError{Row: cw.count, Column: r.Width(), Width: r.Width(), Reason: fmt.Sprintf("expected %d values", len(cw.features)+2)}
	}
	record := make([]string, r.Width())
	for j, v := range r {
		record[j] = feature.FormatValue(v)
	}
	err := cw.w.Write(record)
	if err != nil {
		return fmt.Errorf("writing CSV row %d: %v", cw.count+1, err)
	}
	cw.count++
	return nil
}

func (cw *csvWriter) Flush() error {
	cw.w.Flush()
	return cw.w.Error()
}
