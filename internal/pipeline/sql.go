package pipeline

import "strings"

// cleanSQL strips markdown fences and provider chatter from a model reply,
// leaving the bare statement.
func cleanSQL(reply string) string {
	trimmed := strings.TrimSpace(reply)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.Index(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
		lower := strings.ToLower(trimmed)
		if strings.HasPrefix(lower, "sql") {
			trimmed = strings.TrimSpace(trimmed[3:])
		}
	}
	return strings.TrimSpace(trimmed)
}

// looksLikeSQL reports whether a cleaned reply plausibly is a read query.
// The validator does the real checking; this only rejects prose replies.
func looksLikeSQL(statement string) bool {
	upper := strings.ToUpper(strings.TrimSpace(statement))
	return strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH")
}
