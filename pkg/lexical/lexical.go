// Package lexical implements the keyword-overlap prefilter that orders
// candidate links before any paid embedding call is made. It is a cost
// gate, not a quality judgment.
package lexical

import "strings"

// Score returns the number of distinct tokens shared by the context and
// the query after lowercasing and whitespace tokenization. Pure and
// deterministic; duplicated tokens count once.
func Score(context, query string) int {
	queryWords := tokenSet(query)
	contextWords := tokenSet(context)

	overlap := 0
	for word := range queryWords {
		if _, ok := contextWords[word]; ok {
			overlap++
		}
	}
	return overlap
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = struct{}{}
	}
	return set
}
