package sapling

import (
	"context"
	"fmt"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/queue"
	"github.com/pbanos/sapling/tree"
)

/*
Grow takes a context, a dataset, the features of its rows and whether to
score splits by gain ratio and returns a tree grown on the dataset, kept
on a new in-memory node store.

Each node asks the best question for its rows, as found by FindBestSplit,
and has a child for the rows that match it and another for those that do
not. Nodes whose rows no question can split with a positive score become
leaves predicting the labels of their rows.

It returns dataset.ErrEmptyDataset for datasets without rows and a
*feature.SchemaMismatchError if the rows do not fit the features.
*/
func Grow(ctx context.Context, ds dataset.Dataset, features []feature.Feature, useGainRatio bool) (*tree.Tree, error) {
	if err := dataset.Validate(ctx, ds, features); err != nil {
		return nil, err
	}
	ns := tree.NewMemoryNodeStore()
	root := &tree.Node{}
	if err := ns.Create(ctx, root); err != nil {
		return nil, err
	}
	if err := grow(ctx, ns, root, ds, useGainRatio); err != nil {
		return nil, err
	}
	return tree.New(root.ID, ns, features), nil
}

func grow(ctx context.Context, ns tree.NodeStore, n *tree.Node, ds dataset.Dataset, useGainRatio bool) error {
	tasks, err := develop(ctx, ns, n, ds, useGainRatio)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err = grow(ctx, ns, t.Node, t.Dataset, useGainRatio); err != nil {
			return err
		}
	}
	return nil
}

/*
develop turns the given node into a leaf or a decision node for the given
rows, storing it. For decision nodes it creates both children on the store
and returns the tasks to develop them, true branch first.
*/
func develop(ctx context.Context, ns tree.NodeStore, n *tree.Node, ds dataset.Dataset, useGainRatio bool) ([]*queue.Task, error) {
	_, q, err := findBestSplit(ctx, ds, useGainRatio)
	if err != nil {
		return nil, fmt.Errorf("developing node %s: %w", n.ID, err)
	}
	if q == nil {
		n.Prediction, err = tree.NewPredictionFromDataset(ctx, ds)
		if err != nil {
			return nil, fmt.Errorf("developing node %s: %w", n.ID, err)
		}
		return nil, ns.Store(ctx, n)
	}
	matched, unmatched, err := dataset.Partition(ctx, ds, q)
	if err != nil {
		return nil, fmt.Errorf("developing node %s: %w", n.ID, err)
	}
	tasks := make([]*queue.Task, 0, 2)
	for _, branch := range []struct {
		outcome bool
		ds      dataset.Dataset
	}{{true, matched}, {false, unmatched}} {
		c := feature.NewCriterion(q, branch.outcome)
		child := &tree.Node{ParentID: n.ID, Criterion: &c}
		if err = ns.Create(ctx, child); err != nil {
			return nil, err
		}
		tasks = append(tasks, &queue.Task{Node: child, Dataset: branch.ds, GainRatio: useGainRatio})
	}
	n.Question = q
	n.TrueID = tasks[0].Node.ID
	n.FalseID = tasks[1].Node.ID
	if err = ns.Store(ctx, n); err != nil {
		return nil, err
	}
	return tasks, nil
}
