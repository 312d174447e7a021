package dataset

import (
	"context"

	"github.com/pbanos/sapling/feature"
)

const (
	rowCountThresholdForDatasetImplementation = 1000
)

/*
Dataset represents a collection of rows.

Its Entropy method returns the entropy in bits of the labels of its rows: a
measure of the disinformation we have on the classes of rows that belong to
it.

Its CountLabels method returns the number of rows for each label.

Its FeatureValues method returns the distinct values on a column, sorted
ascending.

Its SubsetWith method takes a feature.Criterion and returns a subset that only
contains rows that satisfy it, in the same relative order.

Its Criteria method returns the criteria that were applied to obtain the
dataset from the root dataset it was derived from.

Its Rows method returns the rows it contains
*/
type Dataset interface {
	Entropy(context.Context) (float64, error)
	CountLabels(context.Context) (map[string]int, error)
	FeatureValues(context.Context, int) ([]interface{}, error)
	SubsetWith(context.Context, feature.Criterion) (Dataset, error)
	Rows(context.Context) ([]Row, error)
	Count(context.Context) (int, error)
	Width(context.Context) (int, error)
	Criteria(context.Context) ([]feature.Criterion, error)
}

type memoryIntensiveSubsettingDataset struct {
	entropy  *float64
	counts   map[string]int
	rows     []Row
	criteria []feature.Criterion
}

type cpuIntensiveSubsettingDataset struct {
	entropy  *float64
	count    *int
	counts   map[string]int
	rows     []Row
	criteria []feature.Criterion
}

/*
New takes a slice of rows and returns a dataset built with them.
The dataset will be a CPU intensive one when the number of rows is
over rowCountThresholdForDatasetImplementation
*/
func New(rows []Row) Dataset {
	if len(rows) > rowCountThresholdForDatasetImplementation {
		return NewCPUIntensive(rows)
	}
	return NewMemoryIntensive(rows)
}

/*
NewMemoryIntensive takes a slice of rows and returns a Dataset
built with them. A memory-intensive dataset is an implementation that
replicates the slice of rows when subsetting to reduce
calculations at the cost of increased memory.
*/
func NewMemoryIntensive(rows []Row) Dataset {
	return &memoryIntensiveSubsettingDataset{rows: rows}
}

/*
NewCPUIntensive takes a slice of rows and returns a Dataset
built with them. A cpu-intensive dataset is an implementation that
instead of replicating the rows when subsetting, stores the
applying feature criteria to define the subset and keeps the same
row slice. This can achieve a drastic reduction in memory use
that comes at the cost of CPU time: every calculation that goes over
the rows of the dataset will apply the feature criteria of the dataset
on all original rows (the ones provided to this method).
*/
func NewCPUIntensive(rows []Row) Dataset {
	return &cpuIntensiveSubsettingDataset{rows: rows, criteria: []feature.Criterion{}}
}

/*
Partition takes a context, a dataset and a question and splits the dataset
in two: the rows that match the question and the rows that do not. Every
row ends up in exactly one of them, keeping its relative order.
*/
func Partition(ctx context.Context, s Dataset, q *feature.Question) (matched Dataset, unmatched Dataset, err error) {
	matched, err = s.SubsetWith(ctx, feature.NewCriterion(q, true))
	if err != nil {
		return nil, nil, err
	}
	unmatched, err = s.SubsetWith(ctx, feature.NewCriterion(q, false))
	if err != nil {
		return nil, nil, err
	}
	return matched, unmatched, nil
}

func (s *memoryIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	return len(s.rows), nil
}

func (s *cpuIntensiveSubsettingDataset) Count(ctx context.Context) (int, error) {
	if s.count != nil {
		return *s.count, nil
	}
	var length int
	err := s.iterateOnDataset(ctx, func(_ Row) (bool, error) {
		length++
		return true, nil
	})
	if err != nil {
		return 0, err
	}
	s.count = &length
	return length, nil
}

func (s *memoryIntensiveSubsettingDataset) Width(ctx context.Context) (int, error) {
	if len(s.rows) == 0 {
		return 0, nil
	}
	return s.rows[0].Width(), nil
}

func (s *cpuIntensiveSubsettingDataset) Width(ctx context.Context) (int, error) {
	var width int
	err := s.iterateOnDataset(ctx, func(r Row) (bool, error) {
		width = r.Width()
		return false, nil
	})
	return width, err
}

func (s *memoryIntensiveSubsettingDataset) Entropy(ctx context.Context) (float64, error) {
	if s.entropy != nil {
		return *s.entropy, nil
	}
	counts, err := s.CountLabels(ctx)
	if err != nil {
		return 0.0, err
	}
	result := Entropy(counts)
	s.entropy = &result
	return result, nil
}

func (s *cpuIntensiveSubsettingDataset) Entropy(ctx context.Context) (float64, error) {
	if s.entropy != nil {
		return *s.entropy, nil
	}
	counts, err := s.CountLabels(ctx)
	if err != nil {
		return 0.0, err
	}
	result := Entropy(counts)
	s.entropy = &result
	return result, nil
}

func (s *memoryIntensiveSubsettingDataset) CountLabels(ctx context.Context) (map[string]int, error) {
	if s.counts == nil {
		s.counts = make(map[string]int)
		for _, r := range s.rows {
			s.counts[r.Label()]++
		}
	}
	return copyCounts(s.counts), nil
}

func (s *cpuIntensiveSubsettingDataset) CountLabels(ctx context.Context) (map[string]int, error) {
	if s.counts == nil {
		counts := make(map[string]int)
		err := s.iterateOnDataset(ctx, func(r Row) (bool, error) {
			counts[r.Label()]++
			return true, nil
		})
		if err != nil {
			return nil, err
		}
		s.counts = counts
	}
	return copyCounts(s.counts), nil
}

func (s *memoryIntensiveSubsettingDataset) FeatureValues(ctx context.Context, column int) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[interface{}]bool)
	for _, r := range s.rows {
		v, err := r.ValueAt(column)
		if err != nil {
			return nil, err
		}
		if !encountered[v] {
			encountered[v] = true
			result = append(result, v)
		}
	}
	SortValues(result)
	return result, nil
}

func (s *cpuIntensiveSubsettingDataset) FeatureValues(ctx context.Context, column int) ([]interface{}, error) {
	result := []interface{}{}
	encountered := make(map[interface{}]bool)
	err := s.iterateOnDataset(ctx, func(r Row) (bool, error) {
		v, err := r.ValueAt(column)
		if err != nil {
			return false, err
		}
		if !encountered[v] {
			encountered[v] = true
			result = append(result, v)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	SortValues(result)
	return result, nil
}

func (s *memoryIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	var rows []Row
	for i, r := range s.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		ok, err := fc.SatisfiedBy(r)
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, r)
		}
	}
	criteria := make([]feature.Criterion, 0, len(s.criteria)+1)
	criteria = append(append(criteria, s.criteria...), fc)
	return &memoryIntensiveSubsettingDataset{rows: rows, criteria: criteria}, nil
}

func (s *cpuIntensiveSubsettingDataset) SubsetWith(ctx context.Context, fc feature.Criterion) (Dataset, error) {
	criteria := make([]feature.Criterion, 0, len(s.criteria)+1)
	criteria = append(append(criteria, s.criteria...), fc)
	return &cpuIntensiveSubsettingDataset{rows: s.rows, criteria: criteria}, nil
}

func (s *memoryIntensiveSubsettingDataset) Rows(ctx context.Context) ([]Row, error) {
	return s.rows, nil
}

func (s *cpuIntensiveSubsettingDataset) Rows(ctx context.Context) ([]Row, error) {
	var rows []Row
	err := s.iterateOnDataset(ctx, func(r Row) (bool, error) {
		rows = append(rows, r)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *memoryIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *cpuIntensiveSubsettingDataset) Criteria(ctx context.Context) ([]feature.Criterion, error) {
	return s.criteria, nil
}

func (s *cpuIntensiveSubsettingDataset) iterateOnDataset(ctx context.Context, lambda func(Row) (bool, error)) error {
	for i, r := range s.rows {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		skip := false
		for _, criterion := range s.criteria {
			ok, err := criterion.SatisfiedBy(r)
			if err != nil {
				return err
			}
			if !ok {
				skip = true
				break
			}
		}
		if !skip {
			ok, err := lambda(r)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
		}
	}
	return nil
}

func copyCounts(counts map[string]int) map[string]int {
	result := make(map[string]int, len(counts))
	for k, v := range counts {
		result[k] = v
	}
	return result
}
