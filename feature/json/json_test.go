package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/feature"
)

func TestCriteriaEncodeDecoder(t *testing.T) {
	ced := NewCriteriaEncodeDecoder()
	for _, c := range []feature.Criterion{
		feature.NewCriterion(feature.NewQuestion(0, 4.0), true),
		feature.NewCriterion(feature.NewQuestion(3, 0.9), false),
		feature.NewCriterion(feature.NewQuestion(2, "solid"), true),
	} {
		data, err := ced.Encode(c)
		require.NoError(t, err)
		decoded, err := ced.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}
}

func TestCriterionEncoding(t *testing.T) {
	data, err := NewCriteriaEncodeDecoder().Encode(feature.NewCriterion(feature.NewQuestion(1, 2.5), false))
	require.NoError(t, err)
	assert.JSONEq(t, `{"c":1,"n":2.5,"o":false}`, string(data))
}

func TestDecodeInvalidCriteria(t *testing.T) {
	ced := NewCriteriaEncodeDecoder()
	for _, data := range []string{
		`{"c":1,"o":true}`,
		`{"c":1,"n":1,"s":"a","o":true}`,
		`not json`,
	} {
		_, err := ced.Decode([]byte(data))
		assert.Error(t, err, data)
	}
	_, err := ced.Encode(feature.Criterion{})
	assert.Error(t, err)
	_, err = ced.Encode(feature.NewCriterion(feature.NewQuestion(0, true), true))
	assert.Error(t, err)
}
