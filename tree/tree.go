package tree

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

// Tree represents a binary decision tree. It is composed of a
// NodeStore where all its nodes are stored, the id for the
// root node of the tree and the features of the rows it
// classifies, in column order.
type Tree struct {
	NodeStore
	RootID   string
	Features []feature.Feature
}

/*
Step is a node visited when traversing a tree, together with
its parent (nil for the root), the branch that leads from the
parent to it and its depth (0 for the root).
*/
type Step struct {
	Node   *Node
	Parent *Node
	Branch string
	Depth  int
}

// New takes the ID for the root Node, a NodeStore and the features of
// the rows and returns a tree composed of the nodes in the NodeStore
// connected to the node with the given root ID.
func New(rootID string, nodeStore NodeStore, features []feature.Feature) *Tree {
	return &Tree{nodeStore, rootID, features}
}

// Classify takes a sample and returns the prediction of the leaf it reaches
// and an error if the prediction could not be made. Questions that cannot be
// evaluated on the sample produce a *feature.SchemaMismatchError.
func (t *Tree) Classify(ctx context.Context, s feature.Sample) (*Prediction, error) {
	if t == nil {
		return nil, fmt.Errorf("nil tree cannot classify samples")
	}
	n, err := t.node(ctx, t.RootID)
	if err != nil {
		return nil, fmt.Errorf("classifying sample: %w", err)
	}
	for !n.IsLeaf() {
		ok, err := n.Question.Match(s)
		if err != nil {
			return nil, fmt.Errorf("classifying sample on node %s: %w", n.ID, err)
		}
		next := n.FalseID
		if ok {
			next = n.TrueID
		}
		n, err = t.node(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("classifying sample: %w", err)
		}
	}
	if n.Prediction == nil {
		return nil, ErrCannotPredictFromSample
	}
	return n.Prediction, nil
}

/*
Test takes a context.Context and a dataset and returns the fraction of its rows
whose label is the one predicted for them by the tree, or an error if any row
cannot be classified.
*/
func (t *Tree) Test(ctx context.Context, ds dataset.Dataset) (float64, error) {
	rows, err := ds.Rows(ctx)
	if err != nil {
		return 0.0, err
	}
	if len(rows) == 0 {
		return 0.0, dataset.ErrEmptyDataset
	}
	var hits int
	for i, r := range rows {
		p, err := t.Classify(ctx, r)
		if err != nil {
			return 0.0, fmt.Errorf("testing row %d: %w", i, err)
		}
		if label, _ := p.PredictedValue(); label == r.Label() {
			hits++
		}
	}
	return float64(hits) / float64(len(rows)), nil
}

// Traverse takes a context and an error-returning function
// that takes a context and a step as parameters, and goes through
// the tree depth first, calling the function for each node before its
// children and for the true branch before the false one.
// If the given context times out or is cancelled, the context
// error is returned. If a node cannot be retrieved from the
// tree's node store, the obtained error is returned. If the
// call to the function returns an error, the traversing is
// aborted and the error is returned. Otherwise, when the
// traversing is over, nil is returned.
func (t *Tree) Traverse(ctx context.Context, f func(context.Context, *Step) error) error {
	root, err := t.node(ctx, t.RootID)
	if err != nil {
		return err
	}
	pending := []*Step{{Node: root}}
	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		s := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		if err := f(ctx, s); err != nil {
			return err
		}
		if s.Node.IsLeaf() {
			continue
		}
		tn, err := t.node(ctx, s.Node.TrueID)
		if err != nil {
			return err
		}
		fn, err := t.node(ctx, s.Node.FalseID)
		if err != nil {
			return err
		}
		pending = append(pending,
			&Step{Node: fn, Parent: s.Node, Branch: BranchFalse, Depth: s.Depth + 1},
			&Step{Node: tn, Parent: s.Node, Branch: BranchTrue, Depth: s.Depth + 1},
		)
	}
	return nil
}

// Describe returns the question of a decision node or the prediction of
// a leaf in human readable form.
func (t *Tree) Describe(n *Node) string {
	if !n.IsLeaf() {
		return n.Question.Describe(t.Features) + "?"
	}
	if n.Prediction == nil {
		return "Pending"
	}
	return "Predict " + n.Prediction.String()
}

// WriteText writes an indented rendering of the tree on the given writer.
func (t *Tree) WriteText(ctx context.Context, w io.Writer) error {
	return t.Traverse(ctx, func(ctx context.Context, s *Step) error {
		var err error
		if s.Parent != nil {
			_, err = fmt.Fprintf(w, "%s--> %s:\n", strings.Repeat("  ", s.Depth-1), s.Branch)
			if err != nil {
				return err
			}
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", s.Depth), t.Describe(s.Node))
		return err
	})
}

func (t *Tree) String() string {
	var buf bytes.Buffer
	if err := t.WriteText(context.TODO(), &buf); err != nil {
		return fmt.Sprintf("ERROR: %s\n", err.Error())
	}
	return buf.String()
}

func (t *Tree) node(ctx context.Context, id string) (*Node, error) {
	n, err := t.NodeStore.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("retrieving node %v: %w", id, err)
	}
	if n == nil {
		return nil, fmt.Errorf("node %v not found", id)
	}
	return n, nil
}
