package feature_test

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling/feature"
)

type row []interface{}

func (r row) ValueAt(column int) (interface{}, error) {
	if column < 0 || column >= len(r) {
		return nil, &feature.SchemaMismatchError{Row: -1, Column: column, Width: len(r), Reason: "column out of range"}
	}
	return r[column], nil
}

var shapeFeatures = []feature.Feature{
	feature.NewContinuousFeature("corners_count"),
	feature.NewContinuousFeature("right_angle_counter"),
	feature.NewDiscreteFeature("color", []string{"red", "blue"}),
}

func TestQuestionNumericMatch(t *testing.T) {
	q := feature.NewQuestion(0, 4)
	require.True(t, q.Numeric())
	assert.Equal(t, 4.0, q.Value())

	for _, tc := range []struct {
		value    float64
		expected bool
	}{
		{3, false},
		{4, true},
		{4.5, true},
	} {
		ok, err := q.Match(row{tc.value, 0.0, "red", "id", "square"})
		require.NoError(t, err)
		assert.Equal(t, tc.expected, ok, "value %v", tc.value)
	}
}

func TestQuestionEqualityMatch(t *testing.T) {
	q := feature.NewQuestion(2, "red")
	require.False(t, q.Numeric())

	ok, err := q.Match(row{0.0, 0.0, "red", "id", "circle"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.Match(row{0.0, 0.0, "blue", "id", "circle"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuestionSchemaMismatch(t *testing.T) {
	var sme *feature.SchemaMismatchError

	_, err := feature.NewQuestion(7, 1.0).Match(row{1.0, "id", "label"})
	require.Error(t, err)
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 7, sme.Column)

	_, err = feature.NewQuestion(0, 1.0).Match(row{"red", "id", "label"})
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 0, sme.Column)

	_, err = feature.NewQuestion(0, "red").Match(row{1.0, "id", "label"})
	require.True(t, errors.As(err, &sme))
}

func TestQuestionDescribe(t *testing.T) {
	assert.Equal(t, "Is corners_count >= 4", feature.NewQuestion(0, 4.0).Describe(shapeFeatures))
	assert.Equal(t, "Is color == red", feature.NewQuestion(2, "red").Describe(shapeFeatures))
	assert.Equal(t, "Is column 5 >= 0.9", feature.NewQuestion(5, 0.9).Describe(shapeFeatures))
	assert.Equal(t, "Is column 0 >= 1.5", fmt.Sprint(feature.NewQuestion(0, 1.5)))
}

func TestCriterion(t *testing.T) {
	q := feature.NewQuestion(0, 4.0)
	square := row{4.0, 4.0, "red", "s1", "square"}
	circle := row{0.0, 0.0, "red", "c1", "circle"}

	matched := feature.NewCriterion(q, true)
	unmatched := feature.NewCriterion(q, false)

	ok, err := matched.SatisfiedBy(square)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = unmatched.SatisfiedBy(square)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = unmatched.SatisfiedBy(circle)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, "corners_count >= 4", matched.Describe(shapeFeatures))
	assert.Equal(t, "corners_count < 4", unmatched.Describe(shapeFeatures))
	assert.Equal(t, "color != red", feature.NewCriterion(feature.NewQuestion(2, "red"), false).Describe(shapeFeatures))
}

func TestFeatureValid(t *testing.T) {
	ok, err := shapeFeatures[0].Valid(2.0)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = shapeFeatures[0].Valid(3)
	assert.True(t, ok)
	assert.NoError(t, err)

	ok, err = shapeFeatures[0].Valid("2")
	assert.False(t, ok)
	assert.Error(t, err)

	for _, n := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		ok, err = shapeFeatures[0].Valid(n)
		assert.False(t, ok, "%v", n)
		assert.Error(t, err, "%v", n)
	}

	ok, err = shapeFeatures[2].Valid("green")
	assert.False(t, ok)
	assert.Error(t, err)

	ok, err = feature.NewDiscreteFeature("any", nil).Valid("green")
	assert.True(t, ok)
	assert.NoError(t, err)

	assert.Equal(t, []string{"corners_count", "right_angle_counter", "color"}, feature.Names(shapeFeatures))
}
