// Package relevance decides whether a free-form question belongs to the
// soccer academy domain before any model call is made.
package relevance

import "strings"

// Filter classifies questions with three ordered checks: denied topics win
// over everything, then domain vocabulary, then generic data-question
// phrasings that deserve the benefit of the doubt.
type Filter struct {
	denyTerms      []string
	allowTerms     []string
	interrogatives []string
}

func New(denyTerms, allowTerms, interrogatives []string) *Filter {
	return &Filter{
		denyTerms:      lowerAll(denyTerms),
		allowTerms:     lowerAll(allowTerms),
		interrogatives: lowerAll(interrogatives),
	}
}

// Default returns the filter with the academy's curated vocabulary.
func Default() *Filter {
	return New(defaultDenyTerms, defaultAllowTerms, defaultInterrogatives)
}

// IsRelevant reports whether the question should enter the query pipeline.
// Blank input is never relevant.
func (f *Filter) IsRelevant(question string) bool {
	normalized := strings.ToLower(strings.TrimSpace(question))
	if normalized == "" {
		return false
	}
	for _, term := range f.denyTerms {
		if containsWord(normalized, term) {
			return false
		}
	}
	for _, term := range f.allowTerms {
		if containsWord(normalized, term) {
			return true
		}
	}
	for _, phrase := range f.interrogatives {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// containsWord matches term as a whole word so "winger" does not trip on
// "win" and "passing" does not trip on "pass".
func containsWord(text, term string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], term)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(term)
		leftOK := idx == 0 || !isWordChar(text[idx-1])
		rightOK := end == len(text) || !isWordChar(text[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
		if start >= len(text) {
			return false
		}
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}

func lowerAll(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

var defaultDenyTerms = []string{
	"recipe", "cooking", "food", "kitchen", "ingredient", "meal", "dish",
	"sandwich", "pizza", "pasta", "cheese", "bread", "restaurant",
	"weather", "temperature", "rain", "sun", "climate",
	"movie", "film", "actor", "actress", "cinema", "theater",
	"music", "song", "album", "artist", "concert", "band",
	"book", "novel", "author", "reading", "literature",
	"programming", "code", "software", "computer", "technology",
	"politics", "government", "president", "election",
	"history", "ancient", "historical", "war", "battle",
}

var defaultAllowTerms = []string{
	"player", "players", "team", "teams", "coach", "coaching",
	"goal", "goals", "assist", "assists", "match", "matches",
	"game", "games", "goalkeeper", "defender", "midfielder",
	"forward", "striker", "winger", "captain", "substitute", "bench",
	"position", "positions", "training", "practice", "drill",
	"skill", "skills", "performance", "fitness",
	"evaluation", "assessment", "metric", "metrics",
	"statistics", "stats", "tactics", "formation", "strategy", "technique",
	"passing", "shooting", "dribbling", "defending", "attacking",
	"speed", "agility", "strength",
	"season", "tournament", "league", "championship",
	"score", "result", "win", "loss", "draw", "victory", "defeat",
	"height", "weight", "age", "injury", "recovery",
	"users", "evaluations", "assessments", "grades", "ratings",
}

var defaultInterrogatives = []string{
	"how many", "show me", "list", "find", "what are", "which", "who",
}
