package json

import (
	"encoding/json"
	"fmt"

	"github.com/pbanos/sapling/feature"
)

/*
CriteriaEncodeDecoder is an interface for objects
that allow encoding criteria into slices of
bytes and decoding them back to criteria.
*/
type CriteriaEncodeDecoder interface {

	//Encode receives a feature.Criterion
	// and returns a slice of bytes with the criterion
	//encoded or an error if the encoding could not
	//be performed for some reason.
	Encode(feature.Criterion) ([]byte, error)

	//Decode receives a slice of bytes
	//and returns a feature.Criterion decoded from the
	//slice of bytes or an error if the decoding
	//could not be performed for some reason.
	Decode([]byte) (feature.Criterion, error)
}

type jsonCriteriaEncodeDecoder struct{}

/*
Question is the JSON representation of a feature.Question: its
column and either a numeric or a string comparison value.
*/
type Question struct {
	Column int      `json:"c"`
	Number *float64 `json:"n,omitempty"`
	String *string  `json:"s,omitempty"`
}

type jsonCriterion struct {
	Question
	Outcome bool `json:"o"`
}

// NewCriteriaEncodeDecoder returns a CriteriaEncodeDecoder that marshals
// and unmarshals criteria into/from slices of bytes as JSON.
// Specifically, criteria are encoded as a JSON object with a "c" property
// set to the column of the question, an "n" property with its threshold
// for numeric questions or an "s" property with its value otherwise, and
// an "o" property with the outcome the criterion requires.
func NewCriteriaEncodeDecoder() CriteriaEncodeDecoder {
	return jsonCriteriaEncodeDecoder{}
}

func (jced jsonCriteriaEncodeDecoder) Encode(c feature.Criterion) ([]byte, error) {
	if c.Question == nil {
		return nil, fmt.Errorf("encoding criterion without question")
	}
	jq, err := NewQuestion(c.Question)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&jsonCriterion{*jq, c.Outcome})
}

func (jced jsonCriteriaEncodeDecoder) Decode(data []byte) (feature.Criterion, error) {
	jc := &jsonCriterion{}
	err := json.Unmarshal(data, jc)
	if err != nil {
		return feature.Criterion{}, err
	}
	q, err := jc.Question.Question()
	if err != nil {
		return feature.Criterion{}, err
	}
	return feature.NewCriterion(q, jc.Outcome), nil
}

// NewQuestion takes a feature.Question and returns its JSON representation
// or an error if its value is neither numeric nor a string.
func NewQuestion(q *feature.Question) (*Question, error) {
	jq := &Question{Column: q.Column()}
	switch v := q.Value().(type) {
	case float64:
		jq.Number = &v
	case string:
		jq.String = &v
	default:
		return nil, fmt.Errorf("cannot encode question value %v of type %T", v, v)
	}
	return jq, nil
}

// Question returns the feature.Question represented by jq or an error if
// it holds no comparison value.
func (jq *Question) Question() (*feature.Question, error) {
	switch {
	case jq.Number != nil && jq.String != nil:
		return nil, fmt.Errorf("question on column %d has both numeric and string values", jq.Column)
	case jq.Number != nil:
		return feature.NewQuestion(jq.Column, *jq.Number), nil
	case jq.String != nil:
		return feature.NewQuestion(jq.Column, *jq.String), nil
	}
	return nil, fmt.Errorf("question on column %d has no value", jq.Column)
}
