package feature

import (
	"fmt"
	"strconv"
)

/*
Sample is an interface for something a Question can be asked about.

Its ValueAt method returns the value on the given column position, or a
*SchemaMismatchError if the sample has no such column.
*/
type Sample interface {
	ValueAt(column int) (interface{}, error)
}

/*
Question is a test on a single column of a sample. When its value is
numeric, a sample matches if its value on the column is greater than or
equal to it. Otherwise a sample matches if its value on the column equals it.

Questions are immutable once created.
*/
type Question struct {
	column int
	value  interface{}
}

/*
NewQuestion takes a column index and a comparison value and returns a
Question on them. Integer and float32 values are stored as float64, so
they are treated as numeric thresholds.
*/
func NewQuestion(column int, value interface{}) *Question {
	if f, ok := toFloat(value); ok {
		value = f
	}
	return &Question{column, value}
}

// Column returns the index of the column the question is about.
func (q *Question) Column() int {
	return q.column
}

// Value returns the comparison value of the question.
func (q *Question) Value() interface{} {
	return q.value
}

// Numeric returns whether the question is a threshold comparison.
func (q *Question) Numeric() bool {
	_, ok := q.value.(float64)
	return ok
}

/*
Match takes a sample and returns whether it answers the question
affirmatively. It returns a *SchemaMismatchError if the sample lacks the
question's column or holds a value of a different kind on it.
*/
func (q *Question) Match(s Sample) (bool, error) {
	v, err := s.ValueAt(q.column)
	if err != nil {
		return false, err
	}
	if threshold, ok := q.value.(float64); ok {
		fv, ok := toFloat(v)
		if !ok {
			return false, &SchemaMismatchError{Row: -1, Column: q.column, Reason: fmt.Sprintf("numeric question on %T value", v)}
		}
		return fv >= threshold, nil
	}
	if _, ok := toFloat(v); ok {
		return false, &SchemaMismatchError{Row: -1, Column: q.column, Reason: fmt.Sprintf("equality question %q on numeric value", FormatValue(q.value))}
	}
	return v == q.value, nil
}

// Condition returns the comparison operator of the question.
func (q *Question) Condition() string {
	if q.Numeric() {
		return ">="
	}
	return "=="
}

/*
Describe takes the ordered features of the rows the question applies
to and returns a human readable rendering of the question, like
"Is corners_count >= 4". Columns without a feature are named by position.
*/
func (q *Question) Describe(features []Feature) string {
	return fmt.Sprintf("Is %s %s %s", columnName(q.column, features), q.Condition(), FormatValue(q.value))
}

func (q *Question) String() string {
	return q.Describe(nil)
}

/*
FormatValue renders a row value: numbers in their shortest decimal form and
anything else with its default format.
*/
func FormatValue(v interface{}) string {
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}

func columnName(column int, features []Feature) string {
	if column >= 0 && column < len(features) {
		return features[column].Name()
	}
	return fmt.Sprintf("column %d", column)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
