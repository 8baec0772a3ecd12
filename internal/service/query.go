package service

import "strings"

const (
	// DefaultPageSize matches the list page size of the public API.
	DefaultPageSize = 10
	// MaxPageSize caps client supplied page_size values.
	MaxPageSize = 100
)

// likeEscaper neutralizes LIKE metacharacters so search terms always match
// as literal substrings. The clauses using these patterns carry ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// orderClauses translates requested ordering keys ("title", "-published_at")
// into SQL order clauses using the allowed column map. Unknown keys are
// silently skipped; an empty result falls back to the default ordering.
func orderClauses(requested []string, allowed map[string]string, fallback []string) []string {
	clauses := make([]string, 0, len(requested))
	for _, raw := range requested {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}
		direction := " asc"
		if strings.HasPrefix(key, "-") {
			direction = " desc"
			key = strings.TrimPrefix(key, "-")
		}
		column, ok := allowed[key]
		if !ok {
			continue
		}
		clauses = append(clauses, column+direction)
	}
	if len(clauses) == 0 {
		return fallback
	}
	return clauses
}
