package json

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/dataset"
	datasetjson "github.com/pbanos/sapling/dataset/json"
	"github.com/pbanos/sapling/feature"
	featurejson "github.com/pbanos/sapling/feature/json"
	"github.com/pbanos/sapling/queue"
	"github.com/pbanos/sapling/tree"
)

func TestTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := dataset.New([]dataset.Row{
		dataset.NewRow(4, "a", "square"),
		dataset.NewRow(0, "b", "circle"),
	})
	ns := tree.NewMemoryNodeStore()
	q := feature.NewQuestion(0, 4)
	c := feature.NewCriterion(q, false)
	n := &tree.Node{Criterion: &c}
	require.NoError(t, ns.Create(ctx, n))
	sub, err := root.SubsetWith(ctx, c)
	require.NoError(t, err)

	ted := New(datasetjson.New(root, "mem://shapes", featurejson.NewCriteriaEncodeDecoder()), ns)
	data, err := ted.Encode(ctx, &queue.Task{Node: n, Dataset: sub, GainRatio: true})
	require.NoError(t, err)

	decoded, err := ted.Decode(ctx, data)
	require.NoError(t, err)
	assert.Same(t, n, decoded.Node)
	assert.True(t, decoded.GainRatio)
	rows, err := decoded.Dataset.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dataset.Row{dataset.NewRow(0, "b", "circle")}, rows)
}

func TestDecodeUnknownNode(t *testing.T) {
	ctx := context.Background()
	ted := New(datasetjson.New(dataset.New(nil), "mem://x", featurejson.NewCriteriaEncodeDecoder()), tree.NewMemoryNodeStore())
	_, err := ted.Decode(ctx, []byte(`{"id":"9","ds":{"uri":"mem://x","criteria":[]}}`))
	assert.Error(t, err)
}
