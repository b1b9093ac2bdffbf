package sparse

import "strings"

// Stop words excluded from term weighting. The list is fixed at encoder
// construction; WithStopwords extends it.
var defaultStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "or": true,
	"in": true, "that": true, "this": true, "these": true, "those": true,
	"have": true, "has": true, "had": true, "it": true, "its": true,
	"for": true, "not": true, "on": true, "with": true, "as": true,
	"you": true, "do": true, "at": true, "but": true, "by": true,
	"from": true, "shall": true, "hereby": true, "herein": true,
	"thereof": true, "whereas": true, "such": true, "any": true,
}

// tokenize splits text into lowercased terms with punctuation trimmed and
// stop words removed.
func tokenize(text string, stopWords map[string]bool) []string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}§¶"))
		if cleaned != "" && !stopWords[cleaned] {
			terms = append(terms, cleaned)
		}
	}
	return terms
}
