package dataset

import (
	"fmt"
	"sort"
)

/*
SortValues sorts a slice of row values in ascending order: numbers
numerically, strings lexicographically, numbers before strings and any
other value after them by its default format.
*/
func SortValues(values []interface{}) {
	sort.SliceStable(values, func(i, j int) bool {
		return lessValue(values[i], values[j])
	})
}

func lessValue(a, b interface{}) bool {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return ra < rb
	}
	switch av := a.(type) {
	case float64:
		return av < b.(float64)
	case string:
		return av < b.(string)
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}

func valueRank(v interface{}) int {
	switch v.(type) {
	case float64:
		return 0
	case string:
		return 1
	}
	return 2
}
