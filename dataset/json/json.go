/*
Package json encodes datasets as the path of criteria that carves them out
of a root dataset, so tasks on a shared queue can refer to their rows
without copying them.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pbanos/sapling/dataset"
	featurejson "github.com/pbanos/sapling/feature/json"
)

// DatasetEncodeDecoder turns datasets into bytes and back.
type DatasetEncodeDecoder interface {
	Encode(context.Context, dataset.Dataset) ([]byte, error)
	Decode(context.Context, []byte) (dataset.Dataset, error)
}

type subsetEncodeDecoder struct {
	root    dataset.Dataset
	rootURI string
	ced     featurejson.CriteriaEncodeDecoder
}

// subset is a dataset as the URI of its root and the criteria applied to it.
type subset struct {
	URI      string            `json:"uri"`
	Criteria []json.RawMessage `json:"criteria"`
}

/*
New returns a DatasetEncodeDecoder for subsets of the given root dataset,
which is identified in the encoded form by rootURI. Criteria are encoded
with the given CriteriaEncodeDecoder. Decoding fails for subsets of a
different root, so every process sharing encoded datasets must open the
same root under the same URI.
*/
func New(root dataset.Dataset, rootURI string, ced featurejson.CriteriaEncodeDecoder) DatasetEncodeDecoder {
	return &subsetEncodeDecoder{root: root, rootURI: rootURI, ced: ced}
}

func (sed *subsetEncodeDecoder) Encode(ctx context.Context, ds dataset.Dataset) ([]byte, error) {
	criteria, err := ds.Criteria(ctx)
	if err != nil {
		return nil, fmt.Errorf("encoding dataset: %v", err)
	}
	s := subset{URI: sed.rootURI, Criteria: make([]json.RawMessage, len(criteria))}
	for i, c := range criteria {
		s.Criteria[i], err = sed.ced.Encode(c)
		if err != nil {
			return nil, fmt.Errorf("encoding dataset: criterion %d (%v): %v", i, c, err)
		}
	}
	return json.Marshal(s)
}

func (sed *subsetEncodeDecoder) Decode(ctx context.Context, data []byte) (dataset.Dataset, error) {
	var s subset
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding dataset: %v", err)
	}
	if s.URI != sed.rootURI {
		return nil, fmt.Errorf("decoding dataset: subset of %q, expected a subset of %q", s.URI, sed.rootURI)
	}
	ds := sed.root
	for i, raw := range s.Criteria {
		c, err := sed.ced.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding dataset: criterion %d: %v", i, err)
		}
		ds, err = ds.SubsetWith(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("decoding dataset: applying %v: %v", c, err)
		}
	}
	return ds, nil
}
