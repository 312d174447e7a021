/*
Package json encodes queue tasks so they can be kept on redis. A task is
stored as the ID of its node, which the decoder fetches from a node store,
and its dataset encoded by a dataset/json DatasetEncodeDecoder.
*/
package json

import (
	"context"
	"encoding/json"
	"fmt"

	datasetjson "github.com/pbanos/sapling/dataset/json"
	"github.com/pbanos/sapling/queue"
	"github.com/pbanos/sapling/tree"
)

// TaskEncodeDecoder turns tasks into bytes and back.
type TaskEncodeDecoder interface {
	Encode(context.Context, *queue.Task) ([]byte, error)
	Decode(context.Context, []byte) (*queue.Task, error)
}

type jsonEncodeDecoder struct {
	ded datasetjson.DatasetEncodeDecoder
	ns  tree.NodeStore
}

type jsonTask struct {
	NodeID    string          `json:"id"`
	GainRatio bool            `json:"gr,omitempty"`
	Dataset   json.RawMessage `json:"ds"`
}

/*
New takes a DatasetEncodeDecoder and a node store and returns a
TaskEncodeDecoder that encodes tasks as JSON objects with the ID of the
task's node, its dataset encoded with the DatasetEncodeDecoder and whether
it uses gain ratio. Decoding retrieves the node from the node store.
*/
func New(ded datasetjson.DatasetEncodeDecoder, ns tree.NodeStore) TaskEncodeDecoder {
	return &jsonEncodeDecoder{ded, ns}
}

func (jed *jsonEncodeDecoder) Encode(ctx context.Context, t *queue.Task) ([]byte, error) {
	jt := &jsonTask{NodeID: t.ID(), GainRatio: t.GainRatio}
	denc, err := jed.ded.Encode(ctx, t.Dataset)
	if err != nil {
		return nil, fmt.Errorf("encoding task as json: %v", err)
	}
	jt.Dataset = denc
	return json.Marshal(jt)
}

func (jed *jsonEncodeDecoder) Decode(ctx context.Context, data []byte) (*queue.Task, error) {
	jt := &jsonTask{}
	err := json.Unmarshal(data, jt)
	if err != nil {
		return nil, fmt.Errorf("decoding task from json: %v", err)
	}
	t := &queue.Task{GainRatio: jt.GainRatio}
	t.Node, err = jed.ns.Get(ctx, jt.NodeID)
	if err != nil {
		return nil, fmt.Errorf("decoding json task: getting task node: %v", err)
	}
	if t.Node == nil {
		return nil, fmt.Errorf("decoding json task: could not get node %q from node store", jt.NodeID)
	}
	t.Dataset, err = jed.ded.Decode(ctx, jt.Dataset)
	if err != nil {
		return nil, fmt.Errorf("decoding json task: decoding task dataset: %v", err)
	}
	return t, nil
}
