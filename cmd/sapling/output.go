package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	mgo "gopkg.in/mgo.v2"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/dataset/csv"
	"github.com/pbanos/sapling/dataset/mongodataset"
	"github.com/pbanos/sapling/dataset/sqldataset"
	"github.com/pbanos/sapling/dataset/sqldataset/pgadapter"
	"github.com/pbanos/sapling/dataset/sqldataset/sqlite3adapter"
	"github.com/pbanos/sapling/feature"
)

/*
writeDataset takes a context, an output (a CSV file path, "" for STDOUT,
an SQLite3 .db file path, a PostgreSQL URL or a MongoDB URL), a dataset,
its features and a logger and writes the rows of the dataset to the output,
returning the number of rows written or an error.
*/
func writeDataset(ctx context.Context, output string, ds dataset.Dataset, features []feature.Feature, log logrus.FieldLogger) (int, error) {
	kind := kindOfInput(output)
	log.WithField("output", output).WithField("kind", kind).Debug("writing dataset")
	switch kind {
	case sqlite3Input, postgresInput:
		var adapter sqldataset.Adapter
		var err error
		if kind == sqlite3Input {
			adapter, err = sqlite3adapter.New(output)
		} else {
			adapter, err = pgadapter.New(output)
		}
		if err != nil {
			return 0, err
		}
		defer adapter.Close()
		return sqldataset.Write(ctx, adapter, ds, features)
	case mongoInput:
		session, err := mgo.Dial(output)
		if err != nil {
			return 0, fmt.Errorf("connecting to %s: %v", output, err)
		}
		defer session.Close()
		mds, err := mongodataset.Open(ctx, session, features)
		if err != nil {
			return 0, err
		}
		rows, err := ds.Rows(ctx)
		if err != nil {
			return 0, err
		}
		return mds.Write(ctx, rows)
	}
	f := os.Stdout
	if output != "" {
		var err error
		f, err = os.Create(output)
		if err != nil {
			return 0, err
		}
		defer f.Close()
	}
	w, err := csv.NewWriter(f, features)
	if err != nil {
		return 0, err
	}
	rows, err := ds.Rows(ctx)
	if err != nil {
		return 0, err
	}
	_, err = w.Write(ctx, rows)
	if err != nil {
		return w.Count(), err
	}
	return w.Count(), w.Flush()
}
