package main

import (
	"context"
	"fmt"
	"strings"

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

type inputKind int

const (
	csvInput inputKind = iota
	sqlite3Input
	postgresInput
	mongoInput
)

func (ik inputKind) String() string {
	switch ik {
	case sqlite3Input:
		return "SQLite3"
	case postgresInput:
		return "PostgreSQL"
	case mongoInput:
		return "MongoDB"
	}
	return "CSV"
}

// kindOfInput tells how an --input style flag value should be read.
func kindOfInput(input string) inputKind {
	switch {
	case strings.HasPrefix(input, "postgres://"), strings.HasPrefix(input, "postgresql://"):
		return postgresInput
	case strings.HasPrefix(input, "mongodb://"):
		return mongoInput
	case strings.HasSuffix(input, ".db"):
		return sqlite3Input
	}
	return csvInput
}

/*
openDataset takes a context, an input (a CSV file path, "" for STDIN,
an SQLite3 .db file path, a PostgreSQL URL or a MongoDB URL), a slice of
features and a logger, and returns the dataset on the input, a function
to release the resources it holds once it is no longer needed, or an error.
*/
func openDataset(ctx context.Context, input string, features []feature.Feature, log logrus.FieldLogger) (dataset.Dataset, func(), error) {
	kind := kindOfInput(input)
	entry := log.WithField("input", input).WithField("kind", kind)
	switch kind {
	case sqlite3Input, postgresInput:
		var adapter sqldataset.Adapter
		var err error
		if kind == sqlite3Input {
			adapter, err = sqlite3adapter.New(input)
		} else {
			adapter, err = pgadapter.New(input)
		}
		if err != nil {
			return nil, nil, err
		}
		defer adapter.Close()
		entry.Debug("reading dataset")
		ds, err := sqldataset.Read(ctx, adapter, features)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %v dataset at %s: %v", kind, input, err)
		}
		return ds, func() {}, nil
	case mongoInput:
		entry.Debug("dialing")
		session, err := mgo.Dial(input)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to %s: %v", input, err)
		}
		ds, err := mongodataset.Open(ctx, session, features)
		if err != nil {
			session.Close()
			return nil, nil, fmt.Errorf("opening %v dataset at %s: %v", kind, input, err)
		}
		return ds, session.Close, nil
	}
	if input == "" {
		entry.Debug("reading dataset from STDIN")
	} else {
		entry.Debug("reading dataset")
	}
	ds, err := csv.ReadDatasetFromFilePath(input, features)
	if err != nil {
		return nil, nil, err
	}
	return ds, func() {}, nil
}
