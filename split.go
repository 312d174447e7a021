package sapling

import (
	"context"
	"errors"
	"fmt"

	"github.com/pbanos/sapling/dataset"
	"github.com/pbanos/sapling/feature"
)

/*
FindBestSplit takes a context, a dataset and whether to score splits by gain
ratio instead of information gain, and returns the question that best splits
the dataset and its score.

Every distinct value of every feature column is tried, columns in ascending
order and values sorted ascending; questions leaving a partition empty are
skipped. Later candidates win ties. When no question scores above 0 the
returned question is nil.

It returns dataset.ErrEmptyDataset for datasets without rows and a
*feature.SchemaMismatchError for datasets whose rows are inconsistent.
*/
func FindBestSplit(ctx context.Context, ds dataset.Dataset, useGainRatio bool) (float64, *feature.Question, error) {
	if err := dataset.Validate(ctx, ds, nil); err != nil {
		return 0.0, nil, err
	}
	return findBestSplit(ctx, ds, useGainRatio)
}

func findBestSplit(ctx context.Context, ds dataset.Dataset, useGainRatio bool) (float64, *feature.Question, error) {
	width, err := ds.Width(ctx)
	if err != nil {
		return 0.0, nil, err
	}
	entropy, err := ds.Entropy(ctx)
	if err != nil {
		return 0.0, nil, err
	}
	var best float64
	var bestQuestion *feature.Question
	for column := 0; column < width-2; column++ {
		values, err := ds.FeatureValues(ctx, column)
		if err != nil {
			return 0.0, nil, fmt.Errorf("listing values on column %d: %w", column, err)
		}
		for _, v := range values {
			q := feature.NewQuestion(column, v)
			score, err := scoreQuestion(ctx, ds, q, entropy, useGainRatio)
			if errors.Is(err, ErrDegenerateSplit) {
				continue
			}
			if err != nil {
				return 0.0, nil, fmt.Errorf("scoring %v: %w", q, err)
			}
			if score >= best {
				best = score
				bestQuestion = q
			}
		}
	}
	if best == 0 {
		return 0.0, nil, nil
	}
	return best, bestQuestion, nil
}

func scoreQuestion(ctx context.Context, ds dataset.Dataset, q *feature.Question, entropy float64, useGainRatio bool) (float64, error) {
	matched, unmatched, err := dataset.Partition(ctx, ds, q)
	if err != nil {
		return 0.0, err
	}
	if useGainRatio {
		return GainRatio(ctx, matched, unmatched, entropy)
	}
	mc, uc, err := counts(ctx, matched, unmatched)
	if err != nil {
		return 0.0, err
	}
	if mc == 0 || uc == 0 {
		return 0.0, ErrDegenerateSplit
	}
	return InformationGain(ctx, matched, unmatched, entropy)
}
