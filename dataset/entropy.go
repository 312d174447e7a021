package dataset

import (
	"math"
	"sort"
)

/*
Entropy takes the number of rows for each label of a set of rows and returns
the Shannon entropy, in bits, of the label distribution. Sets with a single
row or no rows at all have an entropy of 0.
*/
func Entropy(counts map[string]int) float64 {
	var total int
	labels := make([]string, 0, len(counts))
	for l, c := range counts {
		total += c
		labels = append(labels, l)
	}
	if total <= 1 {
		return 0.0
	}
	// fixed summation order keeps results reproducible
	sort.Strings(labels)
	var result float64
	base := float64(total)
	for _, l := range labels {
		if counts[l] == 0 {
			continue
		}
		p := float64(counts[l]) / base
		result -= p * math.Log2(p)
	}
	return result
}
