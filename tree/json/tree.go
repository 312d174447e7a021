package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pbanos/sapling/feature"
	"github.com/pbanos/sapling/tree"
)

type jsonTree struct {
	RootID   string            `json:"rootID"`
	Features []string          `json:"features"`
	Nodes    []json.RawMessage `json:"nodes"`
}

/*
WriteJSONTree writes the tree as a JSON object followed by a newline. The
object has the ID of the root node under "rootID", the feature names in
column order under "features" and under "nodes" every node, encoded with
the given NodeEncodeDecoder, in the order Traverse visits them.
*/
func WriteJSONTree(ctx context.Context, t *tree.Tree, ned NodeEncodeDecoder, w io.Writer) error {
	jt := &jsonTree{
		RootID:   t.RootID,
		Features: feature.Names(t.Features),
		Nodes:    []json.RawMessage{},
	}
	err := t.Traverse(ctx, func(ctx context.Context, s *tree.Step) error {
		jn, err := ned.Encode(s.Node)
		if err != nil {
			return fmt.Errorf("encoding node %s: %w", s.Node.ID, err)
		}
		jt.Nodes = append(jt.Nodes, jn)
		return nil
	})
	if err != nil {
		return err
	}
	return json.NewEncoder(w).Encode(jt)
}
