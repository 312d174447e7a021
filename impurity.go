package sapling

import (
	"context"
	"math"

	"github.com/pbanos/sapling/dataset"
)

// SplitError represents an error scoring a split
type SplitError string

/*
ErrDegenerateSplit is returned when scoring a split that leaves one of
the partitions empty. Split search skips such candidates.
*/
const ErrDegenerateSplit = SplitError("degenerate split: empty partition")

// gainEpsilon is the smallest information gain told apart from rounding
// residue. Splits gaining less carry no information.
const gainEpsilon = 1e-12

func (se SplitError) Error() string {
	return string(se)
}

/*
InformationGain takes a context, the two partitions a question splits a
dataset into and the entropy of that dataset, and returns the reduction
in entropy achieved by the split: the parent entropy minus the entropy of
each partition weighted by its share of the rows.
*/
func InformationGain(ctx context.Context, left, right dataset.Dataset, parentEntropy float64) (float64, error) {
	lc, rc, err := counts(ctx, left, right)
	if err != nil {
		return 0.0, err
	}
	total := float64(lc + rc)
	if total == 0 {
		return 0.0, nil
	}
	le, err := left.Entropy(ctx)
	if err != nil {
		return 0.0, err
	}
	re, err := right.Entropy(ctx)
	if err != nil {
		return 0.0, err
	}
	gain := parentEntropy - float64(lc)/total*le - float64(rc)/total*re
	// rounding leaves uninformative splits slightly off 0, on either side
	if gain < gainEpsilon {
		gain = 0
	}
	return gain, nil
}

/*
IntrinsicValue takes a context and the two partitions a question splits a
dataset into and returns the entropy of the split itself, in bits. It returns
ErrDegenerateSplit if any partition is empty.
*/
func IntrinsicValue(ctx context.Context, left, right dataset.Dataset) (float64, error) {
	lc, rc, err := counts(ctx, left, right)
	if err != nil {
		return 0.0, err
	}
	if lc == 0 || rc == 0 {
		return 0.0, ErrDegenerateSplit
	}
	total := float64(lc + rc)
	pl, pr := float64(lc)/total, float64(rc)/total
	return -pl*math.Log2(pl) - pr*math.Log2(pr), nil
}

/*
GainRatio takes a context, the two partitions a question splits a dataset
into and the entropy of that dataset, and returns the information gain of
the split normalized by its intrinsic value. It returns ErrDegenerateSplit
if any partition is empty.
*/
func GainRatio(ctx context.Context, left, right dataset.Dataset, parentEntropy float64) (float64, error) {
	iv, err := IntrinsicValue(ctx, left, right)
	if err != nil {
		return 0.0, err
	}
	gain, err := InformationGain(ctx, left, right, parentEntropy)
	if err != nil {
		return 0.0, err
	}
	return gain / iv, nil
}

func counts(ctx context.Context, left, right dataset.Dataset) (int, int, error) {
	lc, err := left.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	rc, err := right.Count(ctx)
	if err != nil {
		return 0, 0, err
	}
	return lc, rc, nil
}
