package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Signature is the identity of a line item: product, observation and the
// option multiset. Option order never changes the result.
func Signature(item LineItem) string {
	opts := make([]SelectedOption, len(item.Options))
	copy(opts, item.Options)
	sort.Slice(opts, func(i, j int) bool {
		if opts[i].ID != opts[j].ID {
			return opts[i].ID < opts[j].ID
		}
		return opts[i].Quantity < opts[j].Quantity
	})

	pairs := make([]string, len(opts))
	for i, o := range opts {
		pairs[i] = o.ID + ":" + strconv.Itoa(o.Quantity)
	}

	var b strings.Builder
	b.WriteString(item.ProductID)
	b.WriteString("|obs:")
	b.WriteString(item.Observation)
	b.WriteString("|opts:")
	b.WriteString(strings.Join(pairs, ","))
	return b.String()
}
