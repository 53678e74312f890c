package store

import "strings"

// likePattern builds a case-sensitive substring LIKE pattern from a raw
// search term, escaping the wildcard characters so user input matches
// literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}
