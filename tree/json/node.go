package json

import (
	"encoding/json"

	featurejson "github.com/pbanos/sapling/feature/json"
	"github.com/pbanos/sapling/tree"
)

/*
NodeEncodeDecoder is an interface for objects
that allow encoding nodes into slices of
bytes and decoding them back to nodes.
*/
type NodeEncodeDecoder interface {

	//Encode receives a *tree.Node
	// and returns a slice of bytes with the node
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(*tree.Node) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a *tree.Node decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (*tree.Node, error)
}

type nodeEncodeDecoder struct {
	featurejson.CriteriaEncodeDecoder
}

type node struct {
	ID         string                `json:"id"`
	ParentID   string                `json:"pId,omitempty"`
	Criterion  *json.RawMessage      `json:"c,omitempty"`
	Question   *featurejson.Question `json:"q,omitempty"`
	TrueID     string                `json:"t,omitempty"`
	FalseID    string                `json:"f,omitempty"`
	Prediction *jsonPrediction       `json:"pred,omitempty"`
}

type jsonPrediction struct {
	Counts map[string]int `json:"counts"`
}

/*
NewNodeEncodeDecoder returns a NodeEncodeDecoder that uses the
given CriteriaEncodeDecoder to encode/decode nodes' criteria.
*/
func NewNodeEncodeDecoder(ced featurejson.CriteriaEncodeDecoder) NodeEncodeDecoder {
	return &nodeEncodeDecoder{ced}
}

func (ned *nodeEncodeDecoder) Encode(n *tree.Node) ([]byte, error) {
	jn, err := ned.jsonNode(n)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jn)
}

func (ned *nodeEncodeDecoder) jsonNode(n *tree.Node) (*node, error) {
	jn := &node{
		ID:       n.ID,
		ParentID: n.ParentID,
		TrueID:   n.TrueID,
		FalseID:  n.FalseID,
	}
	if n.Criterion != nil {
		c, err := ned.CriteriaEncodeDecoder.Encode(*n.Criterion)
		if err != nil {
			return nil, err
		}
		rc := json.RawMessage(c)
		jn.Criterion = &rc
	}
	if n.Question != nil {
		q, err := featurejson.NewQuestion(n.Question)
		if err != nil {
			return nil, err
		}
		jn.Question = q
	}
	if n.Prediction != nil {
		jn.Prediction = &jsonPrediction{Counts: n.Prediction.Counts()}
	}
	return jn, nil
}

func (ned *nodeEncodeDecoder) Decode(data []byte) (*tree.Node, error) {
	jn := &node{}
	err := json.Unmarshal(data, jn)
	if err != nil {
		return nil, err
	}
	n := &tree.Node{
		ID:       jn.ID,
		ParentID: jn.ParentID,
		TrueID:   jn.TrueID,
		FalseID:  jn.FalseID,
	}
	if jn.Criterion != nil {
		c, err := ned.CriteriaEncodeDecoder.Decode(*jn.Criterion)
		if err != nil {
			return nil, err
		}
		n.Criterion = &c
	}
	if jn.Question != nil {
		n.Question, err = jn.Question.Question()
		if err != nil {
			return nil, err
		}
	}
	if jn.Prediction != nil {
		n.Prediction = tree.NewPrediction(jn.Prediction.Counts)
	}
	return n, nil
}
