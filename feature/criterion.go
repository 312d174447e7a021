package feature

import "fmt"

/*
Criterion represents a constraint on samples: the answer they must give to
a question. Nodes of a tree carry the criterion that leads to them from
their parent, and subsets of a dataset remember the criteria that produced
them.
*/
type Criterion struct {
	Question *Question
	Outcome  bool
}

// NewCriterion returns a criterion satisfied by samples that answer the
// given question with the given outcome.
func NewCriterion(q *Question, outcome bool) Criterion {
	return Criterion{q, outcome}
}

/*
SatisfiedBy receives a sample as parameter and returns a boolean indicating if the
sample answers the criterion's question with the criterion's outcome.
*/
func (c Criterion) SatisfiedBy(s Sample) (bool, error) {
	ok, err := c.Question.Match(s)
	if err != nil {
		return false, err
	}
	return ok == c.Outcome, nil
}

/*
Describe renders the criterion as a condition on the named column, like
"corners_count >= 4" or "color != red".
*/
func (c Criterion) Describe(features []Feature) string {
	op := c.Question.Condition()
	if !c.Outcome {
		if c.Question.Numeric() {
			op = "<"
		} else {
			op = "!="
		}
	}
	return fmt.Sprintf("%s %s %s", columnName(c.Question.column, features), op, FormatValue(c.Question.value))
}

func (c Criterion) String() string {
	return c.Describe(nil)
}
