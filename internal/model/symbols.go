package model

import "strings"

// NormalizeSymbols trims and upper-cases symbols, dropping blanks and duplicates
// while keeping first-seen order.
func NormalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// SplitSymbols splits a comma or whitespace separated list and normalizes it.
func SplitSymbols(list string) []string {
	return NormalizeSymbols(strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	}))
}
