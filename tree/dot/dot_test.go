package dot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
)

func TestWrite(t *testing.T) {
	ctx := context.Background()
	ns := tree.NewMemoryNodeStore()
	q := feature.NewQuestion(0, `say "hi"`)
	root := &tree.Node{Question: q}
	require.NoError(t, ns.Create(ctx, root))
	tc, fc := feature.NewCriterion(q, true), feature.NewCriterion(q, false)
	yes := &tree.Node{ParentID: root.ID, Criterion: &tc, Prediction: tree.NewPrediction(map[string]int{"a": 1})}
	no := &tree.Node{ParentID: root.ID, Criterion: &fc, Prediction: tree.NewPrediction(map[string]int{"b": 1})}
	require.NoError(t, ns.Create(ctx, yes))
	require.NoError(t, ns.Create(ctx, no))
	root.TrueID, root.FalseID = yes.ID, no.ID

	var buf bytes.Buffer
	require.NoError(t, Write(ctx, tree.New(root.ID, ns, []feature.Feature{feature.NewDiscreteFeature("greeting", nil)}), &buf))
	assert.Equal(t, `digraph tree {
	node [shape=box];
	"1" [label="Is greeting == say \"hi\"?"];
	"2" [label="Predict {a: 100%}", style=rounded];
	"1" -> "2" [label="True"];
	"3" [label="Predict {b: 100%}", style=rounded];
	"1" -> "3" [label="False"];
}
`, buf.String())
}
