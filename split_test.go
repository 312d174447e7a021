package sapling_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbanos/sapling"
	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

func shapes() dataset.Dataset {
	return dataset.New([]dataset.Row{
		dataset.NewRow(4, 4, 2, 1.0, "c1", "square"),
		dataset.NewRow(4, 4, 2, 1.0, "c2", "square"),
		dataset.NewRow(0, 0, 0, 1.0, "c3", "circle"),
		dataset.NewRow(0, 0, 0, 1.5, "c4", "circle"),
	})
}

func TestFindBestSplitSeparatesShapes(t *testing.T) {
	ctx := context.Background()
	score, q, err := sapling.FindBestSplit(ctx, shapes(), false)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, 1.0, score)
	assert.True(t, q.Numeric())

	matched, unmatched, err := dataset.Partition(ctx, shapes(), q)
	require.NoError(t, err)
	mc, err := matched.CountLabels(ctx)
	require.NoError(t, err)
	uc, err := unmatched.CountLabels(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"square": 2}, mc)
	assert.Equal(t, map[string]int{"circle": 2}, uc)
}

func TestFindBestSplitTiesGoToLaterCandidate(t *testing.T) {
	// columns 0, 1 and 2 all separate the shapes perfectly
	_, q, err := sapling.FindBestSplit(context.Background(), shapes(), false)
	require.NoError(t, err)
	assert.Equal(t, feature.NewQuestion(2, 2), q)
}

func TestFindBestSplitOnCorners(t *testing.T) {
	ds := dataset.New([]dataset.Row{
		dataset.NewRow(4, "red", "a", "square"),
		dataset.NewRow(4, "blue", "b", "square"),
		dataset.NewRow(0, "red", "c", "circle"),
		dataset.NewRow(0, "blue", "d", "circle"),
	})
	score, q, err := sapling.FindBestSplit(context.Background(), ds, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)
	assert.Equal(t, feature.NewQuestion(0, 4), q)
}

func TestFindBestSplitCategorical(t *testing.T) {
	ds := dataset.New([]dataset.Row{
		dataset.NewRow("red", "a", "apple"),
		dataset.NewRow("yellow", "b", "banana"),
		dataset.NewRow("red", "c", "apple"),
	})
	_, q, err := sapling.FindBestSplit(context.Background(), ds, true)
	require.NoError(t, err)
	// "red" and "yellow" split equally well, the later one wins
	assert.Equal(t, feature.NewQuestion(0, "yellow"), q)
}

func TestFindBestSplitWithoutInformation(t *testing.T) {
	ctx := context.Background()
	rows := make([]dataset.Row, 10)
	for i := range rows {
		rows[i] = dataset.NewRow(i, "red", i, "circle")
	}
	score, q, err := sapling.FindBestSplit(ctx, dataset.New(rows), false)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.Nil(t, q)

	// every candidate scores 0 on an even mix
	score, q, err = sapling.FindBestSplit(ctx, dataset.New([]dataset.Row{
		dataset.NewRow(1, "a", "x"),
		dataset.NewRow(1, "b", "y"),
		dataset.NewRow(2, "c", "x"),
		dataset.NewRow(2, "d", "y"),
	}), true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
	assert.Nil(t, q)
}

// evenMix returns a dataset with a single numeric column where each of 5
// labels appears n times with value 1 and m times with value 2.
func evenMix(n, m int) dataset.Dataset {
	var rows []dataset.Row
	for _, label := range []string{"a", "b", "c", "d", "e"} {
		for i := 0; i < n; i++ {
			rows = append(rows, dataset.NewRow(1, fmt.Sprintf("%s1-%d", label, i), label))
		}
		for i := 0; i < m; i++ {
			rows = append(rows, dataset.NewRow(2, fmt.Sprintf("%s2-%d", label, i), label))
		}
	}
	return dataset.New(rows)
}

func TestFindBestSplitIgnoresRoundingResidue(t *testing.T) {
	ctx := context.Background()
	for n := 1; n <= 6; n++ {
		for m := 1; m <= 6; m++ {
			for _, useGainRatio := range []bool{false, true} {
				score, q, err := sapling.FindBestSplit(ctx, evenMix(n, m), useGainRatio)
				require.NoError(t, err)
				assert.Equal(t, 0.0, score, "n=%d m=%d gainRatio=%v", n, m, useGainRatio)
				assert.Nil(t, q, "n=%d m=%d gainRatio=%v", n, m, useGainRatio)
			}
		}
	}
}

func TestInformationGainIgnoresRoundingResidue(t *testing.T) {
	ctx := context.Background()
	ds := evenMix(1, 2)
	entropy, err := ds.Entropy(ctx)
	require.NoError(t, err)
	matched, unmatched, err := dataset.Partition(ctx, ds, feature.NewQuestion(0, 2))
	require.NoError(t, err)
	gain, err := sapling.InformationGain(ctx, matched, unmatched, entropy)
	require.NoError(t, err)
	assert.Equal(t, 0.0, gain)
}

func TestFindBestSplitErrors(t *testing.T) {
	ctx := context.Background()
	_, _, err := sapling.FindBestSplit(ctx, dataset.New(nil), false)
	assert.True(t, errors.Is(err, dataset.ErrEmptyDataset))

	_, _, err = sapling.FindBestSplit(ctx, dataset.New([]dataset.Row{
		dataset.NewRow(4, 1.0, "a", "square"),
		dataset.NewRow(0, "a", "circle"),
	}), false)
	var sme *feature.SchemaMismatchError
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 1, sme.Row)

	_, _, err = sapling.FindBestSplit(ctx, dataset.New([]dataset.Row{
		dataset.NewRow(4, "a", "square"),
		dataset.NewRow("four", "b", "circle"),
	}), false)
	require.True(t, errors.As(err, &sme))
	assert.Equal(t, 1, sme.Row)
	assert.Equal(t, 0, sme.Column)
}
