package repositories

import (
	"sort"
	"strings"
)

// likeEscape is declared explicitly; postgres and mysql disagree on how a
// backslash inside a string literal is read.
const likeEscape = " ESCAPE '!'"

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func ilikeClause(col string) string {
	return "LOWER(" + col + ") LIKE ?" + likeEscape
}

// likeLiteral makes user input match itself only inside a LIKE pattern.
func likeLiteral(v string) string {
	return likeEscaper.Replace(v)
}

func likePattern(v string) string {
	return "%" + likeLiteral(strings.ToLower(strings.TrimSpace(v))) + "%"
}

// topN orders keys by count descending, first-seen order breaking ties.
func topN(order []string, counts map[string]int, n int) []string {
	keys := append([]string(nil), order...)
	sort.SliceStable(keys, func(i, j int) bool {
		return counts[keys[i]] > counts[keys[j]]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// Offset converts a 1-based page into a row offset.
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
