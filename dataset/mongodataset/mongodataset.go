/*
Package mongodataset provides a implementation of dataset.Dataset
that uses a MongoDB database as backend.

Rows are kept as documents on the samples collection of the session's
default database, with one field per feature plus id and label fields.
Subsets are never materialized: their criteria are translated into a
MongoDB query and counts are computed by aggregation on the server.
*/
package mongodataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	mgo "gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

/*
Dataset is a dataset.Dataset to which rows can be added
*/
type Dataset interface {
	dataset.Dataset
	Write(context.Context, []dataset.Row) (int, error)
}

type mongodataset struct {
	session    *mgo.Session
	features   []feature.Feature
	criteria   []feature.Criterion
	mongoQuery bson.M
	entropy    *float64
	counts     map[string]int
}

const (
	samplesCollectionName = "samples"
	idField               = "id"
	labelField            = "label"
)

/*
Open takes a context, a MongoDB database session and a slice of features and
returns a Dataset that works on the default database for that session or an
error if the feature names cannot be used as fields or indexes cannot be set
up on the collection.
*/
func Open(ctx context.Context, session *mgo.Session, features []feature.Feature) (Dataset, error) {
	mds := &mongodataset{session: session, features: features}
	err := mds.ensureIndexes()
	if err != nil {
		return nil, err
	}
	return mds, nil
}

func (mds *mongodataset) Entropy(ctx context.Context) (float64, error) {
	if mds.entropy != nil {
		return *mds.entropy, nil
	}
	counts, err := mds.CountLabels(ctx)
	if err != nil {
		return 0.0, err
	}
	result := dataset.Entropy(counts)
	mds.entropy = &result
	return result, nil
}

func (mds *mongodataset) CountLabels(ctx context.Context) (map[string]int, error) {
	if mds.counts != nil {
		return copyCounts(mds.counts), nil
	}
	query, err := mds.query()
	if err != nil {
		return nil, err
	}
	s := mds.session.Copy()
	defer s.Close()
	iter := samplesCollection(s).Pipe([]bson.M{
		{"$match": query},
		{"$group": bson.M{"_id": "$" + labelField, "count": bson.M{"$sum": 1}}},
	}).Iter()
	defer iter.Close()
	var doc bson.M
	result := make(map[string]int)
	for iter.Next(&doc) {
		count, ok := toInt(doc["count"])
		if !ok {
			return nil, fmt.Errorf("counting labels: mongo aggregation query returned a %T instead of an int as count", doc["count"])
		}
		result[feature.FormatValue(doc["_id"])] = count
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "counting labels")
	}
	mds.counts = result
	return copyCounts(result), nil
}

func (mds *mongodataset) FeatureValues(ctx context.Context, column int) ([]interface{}, error) {
	f, err := mds.featureAt(column)
	if err != nil {
		return nil, err
	}
	query, err := mds.query()
	if err != nil {
		return nil, err
	}
	s := mds.session.Copy()
	defer s.Close()
	iter := samplesCollection(s).Pipe([]bson.M{
		{"$match": query},
		{"$group": bson.M{"_id": "$" + f.Name()}},
	}).Iter()
	defer iter.Close()
	var doc bson.M
	result := []interface{}{}
	for iter.Next(&doc) {
		result = append(result, dataset.NewRow(doc["_id"])[0])
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "listing values of feature %s", f.Name())
	}
	dataset.SortValues(result)
	return result, nil
}

func (mds *mongodataset) SubsetWith(ctx context.Context, fc feature.Criterion) (dataset.Dataset, error) {
	if _, err := mds.featureAt(fc.Question.Column()); err != nil {
		return nil, err
	}
	criteria := make([]feature.Criterion, 0, len(mds.criteria)+1)
	criteria = append(append(criteria, mds.criteria...), fc)
	return &mongodataset{session: mds.session, features: mds.features, criteria: criteria}, nil
}

func (mds *mongodataset) Rows(ctx context.Context) ([]dataset.Row, error) {
	query, err := mds.query()
	if err != nil {
		return nil, err
	}
	s := mds.session.Copy()
	defer s.Close()
	iter := samplesCollection(s).Find(query).Sort("_id").Iter()
	defer iter.Close()
	var rows []dataset.Row
	for i := 0; ; i++ {
		doc := bson.M{}
		if !iter.Next(&doc) {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := mds.rowFromDocument(i, doc)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading rows")
	}
	return rows, nil
}

func (mds *mongodataset) Count(context.Context) (int, error) {
	query, err := mds.query()
	if err != nil {
		return 0, err
	}
	s := mds.session.Copy()
	defer s.Close()
	n, err := samplesCollection(s).Find(query).Count()
	if err != nil {
		return 0, errors.Wrapf(err, "counting rows")
	}
	return n, nil
}

// Width is the same for every document of the collection
func (mds *mongodataset) Width(context.Context) (int, error) {
	return len(mds.features) + 2, nil
}

func (mds *mongodataset) Criteria(context.Context) ([]feature.Criterion, error) {
	return mds.criteria, nil
}

func (mds *mongodataset) Write(ctx context.Context, rows []dataset.Row) (int, error) {
	docs := make([]interface{}, 0, len(rows))
	for i, r := range rows {
		if r.Width() != len(mds.features)+2 {
			return 0, &feature.SchemaMismatchError{Row: i, Column: r.Width(), Width: r.Width(), Reason: fmt.Sprintf("expected %d values", len(mds.features)+2)}
		}
		doc := make(bson.M)
		for j, f := range mds.features {
			if ok, err := f.Valid(r[j]); !ok {
				return 0, &feature.SchemaMismatchError{Row: i, Column: j, Width: r.Width(), Reason: err.Error()}
			}
			doc[f.Name()] = r[j]
		}
		doc[idField] = r.ID()
		doc[labelField] = r.Label()
		docs = append(docs, doc)
	}
	if len(docs) == 0 {
		return 0, nil
	}
	s := mds.session.Copy()
	defer s.Close()
	err := samplesCollection(s).Insert(docs...)
	if err != nil {
		return 0, errors.Wrapf(err, "inserting %d rows", len(docs))
	}
	return len(rows), nil
}

func (mds *mongodataset) rowFromDocument(i int, doc bson.M) (dataset.Row, error) {
	values := make([]interface{}, 0, len(mds.features)+2)
	for j, f := range mds.features {
		v, ok := doc[f.Name()]
		if !ok {
			return nil, &feature.SchemaMismatchError{Row: i, Column: j, Width: len(mds.features) + 2, Reason: fmt.Sprintf("missing value for feature %s", f.Name())}
		}
		values = append(values, v)
	}
	values = append(values, doc[idField], doc[labelField])
	row := dataset.NewRow(values...)
	for j, f := range mds.features {
		if ok, err := f.Valid(row[j]); !ok {
			return nil, &feature.SchemaMismatchError{Row: i, Column: j, Width: row.Width(), Reason: err.Error()}
		}
	}
	return row, nil
}

func (mds *mongodataset) ensureIndexes() error {
	s := mds.session.Copy()
	defer s.Close()
	for _, f := range mds.features {
		fName := f.Name()
		if fName == "_id" || fName == idField || fName == labelField {
			return fmt.Errorf("invalid feature name %q: reserved collection field", fName)
		}
		if strings.ContainsAny(fName, ".$") {
			return fmt.Errorf("invalid feature name %q: contains reserved characters %q or %q", fName, ".", "$")
		}
		index := mgo.Index{
			Key:        []string{fName},
			Background: true,
			Sparse:     true,
		}
		err := samplesCollection(s).EnsureIndex(index)
		if err != nil {
			return errors.Wrapf(err, "ensuring index on %s", fName)
		}
	}
	return nil
}

func (mds *mongodataset) featureAt(column int) (feature.Feature, error) {
	if column < 0 || column >= len(mds.features) {
		return nil, &feature.SchemaMismatchError{Row: -1, Column: column, Width: len(mds.features) + 2, Reason: "column is not a feature"}
	}
	return mds.features[column], nil
}

func (mds *mongodataset) query() (bson.M, error) {
	if mds.mongoQuery == nil {
		q, err := criteriaQuery(mds.features, mds.criteria)
		if err != nil {
			return nil, err
		}
		mds.mongoQuery = q
	}
	return mds.mongoQuery, nil
}

/*
criteriaQuery translates criteria into a MongoDB query document matching the
rows that satisfy all of them.
*/
func criteriaQuery(features []feature.Feature, criteria []feature.Criterion) (bson.M, error) {
	conditions := make([]bson.M, 0, len(criteria))
	for _, fc := range criteria {
		column := fc.Question.Column()
		if column < 0 || column >= len(features) {
			return nil, &feature.SchemaMismatchError{Row: -1, Column: column, Width: len(features) + 2, Reason: "column is not a feature"}
		}
		name := features[column].Name()
		var cond interface{}
		switch {
		case fc.Question.Numeric() && fc.Outcome:
			cond = bson.M{"$gte": fc.Question.Value()}
		case fc.Question.Numeric():
			cond = bson.M{"$lt": fc.Question.Value()}
		case fc.Outcome:
			cond = fc.Question.Value()
		default:
			cond = bson.M{"$ne": fc.Question.Value()}
		}
		conditions = append(conditions, bson.M{name: cond})
	}
	switch len(conditions) {
	case 0:
		return bson.M{}, nil
	case 1:
		return conditions[0], nil
	}
	return bson.M{"$and": conditions}, nil
}

func samplesCollection(s *mgo.Session) *mgo.Collection {
	return s.DB("").C(samplesCollectionName)
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func copyCounts(counts map[string]int) map[string]int {
	result := make(map[string]int, len(counts))
	for k, v := range counts {
		result[k] = v
	}
	return result
}
