// Package classorder ranks free-text class names into the school's display order.
package classorder

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Unranked is the rank of a class name no rule recognises. It sorts last.
const Unranked = 999

// rule matches a lower-cased, trimmed class name. Keywords are substring
// tests, exact entries must equal the whole name.
type rule struct {
	rank     int
	keywords []string
	exact    []string
}

// rules are evaluated in order and the first match wins. Bare digits are
// exact matches only, otherwise "1" would claim "10th" and "2" "2nd year".
var rules = []rule{
	{rank: 1, keywords: []string{"pg", "playgroup"}},
	{rank: 2, keywords: []string{"nursery"}},
	{rank: 3, keywords: []string{"prep", "preparatory"}},
	{rank: 4, keywords: []string{"one"}, exact: []string{"1", "class 1", "class one"}},
	{rank: 5, keywords: []string{"two"}, exact: []string{"2", "class 2", "class two"}},
	{rank: 6, keywords: []string{"three"}, exact: []string{"3", "class 3"}},
	{rank: 7, keywords: []string{"four"}, exact: []string{"4", "class 4"}},
	{rank: 8, keywords: []string{"five"}, exact: []string{"5", "class 5"}},
	{rank: 9, keywords: []string{"6th", "six"}, exact: []string{"6", "class 6"}},
	{rank: 10, keywords: []string{"7th", "seven"}, exact: []string{"7", "class 7"}},
	{rank: 11, keywords: []string{"8th", "eight"}, exact: []string{"8", "class 8"}},
	{rank: 12, keywords: []string{"9th", "nine"}, exact: []string{"9", "class 9"}},
	{rank: 13, keywords: []string{"10th", "ten"}, exact: []string{"10", "class 10"}},
	{rank: 14, keywords: []string{"1st year", "first year", "11th"}},
	{rank: 15, keywords: []string{"2nd year", "second year", "12th"}},
}

func (r rule) matches(name string) bool {
	for _, e := range r.exact {
		if name == e {
			return true
		}
	}
	for _, k := range r.keywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}

// RankOf returns the display rank of a class name, or Unranked.
//
// Matching is substring based, so a name like "Nine Arts" ranks as grade 9.
func RankOf(name string) int {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, r := range rules {
		if r.matches(n) {
			return r.rank
		}
	}
	return Unranked
}

// SortBySequence returns a copy of list ordered by RankOf, with ties broken
// by locale collation of the name. The sort is stable and list is not modified.
func SortBySequence[T any](list []T, name func(T) string) []T {
	out := make([]T, len(list))
	copy(out, list)
	if len(out) < 2 {
		return out
	}

	// collate.Collator keeps internal buffers; one per call
	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b T) int {
		na, nb := name(a), name(b)
		if ra, rb := RankOf(na), RankOf(nb); ra != rb {
			return ra - rb
		}
		return col.CompareString(na, nb)
	})
	return out
}

// SortNames orders plain class names by sequence.
func SortNames(names []string) []string {
	return SortBySequence(names, func(s string) string { return s })
}
