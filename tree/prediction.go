package tree

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/pbanos/sapling/dataset"
)

/*
Prediction represents the prediction a leaf of a decision tree makes: the
number of training rows for each label that reached it.
*/
type Prediction struct {
	counts map[string]int
	weight int
}

// PredictionError represents an error related with predictions
type PredictionError string

/*
ErrCannotPredictFromSample is the error returned by the Classify method of a
tree when the row reaches a node that has neither a question nor a prediction,
which only happens on trees that are still growing.
*/
const ErrCannotPredictFromSample = PredictionError("no prediction available for this kind of sample")

/*
ErrCannotPredictFromEmptySet is the error returned when trying to build a prediction
based on an empty dataset.
*/
const ErrCannotPredictFromEmptySet = PredictionError("cannot make prediction for empty dataset")

func (pe PredictionError) Error() string {
	return string(pe)
}

/*
NewPrediction takes a map with the number of rows for each label
and returns a prediction representing them. The map is copied.
*/
func NewPrediction(counts map[string]int) *Prediction {
	p := &Prediction{counts: make(map[string]int, len(counts))}
	for l, c := range counts {
		p.counts[l] = c
		p.weight += c
	}
	return p
}

// NewPredictionFromDataset takes a context and a dataset and returns
// a prediction based on the labels of its rows or an error if there
// are no rows in the dataset, or the dataset cannot be queried
func NewPredictionFromDataset(ctx context.Context, ds dataset.Dataset) (*Prediction, error) {
	counts, err := ds.CountLabels(ctx)
	if err != nil {
		return nil, err
	}
	p := NewPrediction(counts)
	if p.weight == 0 {
		return nil, ErrCannotPredictFromEmptySet
	}
	return p, nil
}

/*
Counts returns a copy of the mapping of label to number of rows
*/
func (p *Prediction) Counts() map[string]int {
	result := make(map[string]int, len(p.counts))
	for l, c := range p.counts {
		result[l] = c
	}
	return result
}

/*
Weight returns the weight of the prediction: an
int equal to the number of rows in the dataset from which
the prediction was made
*/
func (p *Prediction) Weight() int {
	return p.weight
}

/*
ProbabilityOf takes a label and returns the float64 probability of that
label according to the prediction.
*/
func (p *Prediction) ProbabilityOf(label string) float64 {
	if p.weight == 0 {
		return 0.0
	}
	return float64(p.counts[label]) / float64(p.weight)
}

// Percentages returns the Summarize'd counts of the prediction
func (p *Prediction) Percentages() map[string]int {
	return Summarize(p.counts)
}

/*
PredictedValue returns the label with the highest count and its confidence,
the rounded percentage of rows with that label. Ties go to the label that
sorts first.
*/
func (p *Prediction) PredictedValue() (label string, confidence int) {
	best := -1
	for _, l := range p.labels() {
		if p.counts[l] > best {
			label = l
			best = p.counts[l]
		}
	}
	if best < 0 {
		return "", 0
	}
	return label, Summarize(p.counts)[label]
}

func (p *Prediction) String() string {
	percentages := p.Percentages()
	parts := make([]string, 0, len(percentages))
	for _, l := range p.labels() {
		parts = append(parts, fmt.Sprintf("%s: %d%%", l, percentages[l]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (p *Prediction) labels() []string {
	labels := make([]string, 0, len(p.counts))
	for l := range p.counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

/*
Summarize takes a mapping of label to count and returns a mapping of label to
its share of the total, as a percentage rounded to the nearest integer. The
percentages may not add up to exactly 100.
*/
func Summarize(counts map[string]int) map[string]int {
	var total int
	for _, c := range counts {
		total += c
	}
	result := make(map[string]int, len(counts))
	if total == 0 {
		return result
	}
	for l, c := range counts {
		result[l] = int(math.Round(float64(c) / float64(total) * 100))
	}
	return result
}
