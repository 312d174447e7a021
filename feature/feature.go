package feature

import (
	"fmt"
	"math"
)

// Feature is a property observed on rows, always at the same column.
type Feature interface {
	Name() string
	// Valid reports whether the value can be observed for the feature,
	// with an error explaining why not when it cannot.
	Valid(interface{}) (bool, error)
}

/*
DiscreteFeature is a property whose values are strings. When it lists its
available values, only those are valid; with none listed any string is.
*/
type DiscreteFeature struct {
	name            string
	availableValues []string
}

// ContinuousFeature is a property with numeric values.
type ContinuousFeature struct {
	name string
}

// NewDiscreteFeature returns a discrete feature with the given name and
// available values.
func NewDiscreteFeature(name string, availableValues []string) *DiscreteFeature {
	return &DiscreteFeature{name, availableValues}
}

// NewContinuousFeature returns a continuous feature with the given name.
func NewContinuousFeature(name string) *ContinuousFeature {
	return &ContinuousFeature{name}
}

func (df *DiscreteFeature) Name() string {
	return df.name
}

func (df *DiscreteFeature) Valid(value interface{}) (bool, error) {
	vs, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("discrete feature %s expects a string, got %T", df.name, value)
	}
	if len(df.availableValues) == 0 {
		return true, nil
	}
	for _, av := range df.availableValues {
		if av == vs {
			return true, nil
		}
	}
	return false, fmt.Errorf("discrete feature %s does not take value %q", df.name, vs)
}

// AvailableValues returns the values the feature can take, if restricted.
func (df *DiscreteFeature) AvailableValues() []string {
	return df.availableValues
}

func (df *DiscreteFeature) String() string {
	return df.name
}

func (cf *ContinuousFeature) Name() string {
	return cf.name
}

// Valid accepts any finite Go integer or floating point number.
func (cf *ContinuousFeature) Valid(value interface{}) (bool, error) {
	n, ok := toFloat(value)
	if !ok {
		return false, fmt.Errorf("continuous feature %s expects a number, got %T", cf.name, value)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return false, fmt.Errorf("continuous feature %s expects a finite number, got %v", cf.name, n)
	}
	return true, nil
}

func (cf *ContinuousFeature) String() string {
	return cf.name
}

// Names returns the names of the given features, in order.
func Names(features []Feature) []string {
	names := make([]string, len(features))
	for i, f := range features {
		names[i] = f.Name()
	}
	return names
}
