package helper

import "strings"

// SummarizeQuery collapses whitespace and truncates a user query for log lines.
func SummarizeQuery(q string) string {
	q = strings.Join(strings.Fields(q), " ")
	const maxLen = 80
	runes := []rune(q)
	if len(runes) <= maxLen {
		return q
	}
	return string(runes[:maxLen]) + "..."
}

// UniqueStrings returns a new slice with duplicates removed, preserving the first-seen order.
func UniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
