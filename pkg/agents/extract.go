package agents

import (
	"regexp"
	"strconv"
	"strings"
)

// SearchTerms holds the hints extracted from a free-text query. All fields
// are optional; empty string or nil means the hint was absent.
type SearchTerms struct {
	Location   string    `json:"location,omitzero"`
	Activity   string    `json:"activity,omitzero"`
	Duration   *Duration `json:"duration,omitzero"`
	Difficulty string    `json:"difficulty,omitzero"`
}

// Empty reports whether no term was extracted at all.
func (t SearchTerms) Empty() bool {
	return t.Location == "" && t.Activity == "" && t.Duration == nil && t.Difficulty == ""
}

// Duration is a trip length hint such as "3 days" or "1 week".
type Duration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"` // "day" or "week"
}

// Location extraction tries rules in order; the first match wins. Rule 1
// wants a capitalized phrase ending in a named landform, rule 2 a
// National/State/Provincial park name, rule 3 is a generic fallback that
// grabs whatever follows a preposition up to a natural terminator.
var locationRules = []*regexp.Regexp{
	regexp.MustCompile(`(?:in|at|near|around|to)\s+((?:[A-Z][A-Za-z'\-]*\s+)*[A-Z][A-Za-z'\-]*\s+(?:Park|Mountains?|Forest|Lake|River|Valley|Canyon|Trail|Beach|Coast|Island))`),
	regexp.MustCompile(`(?:in|at|near|around|to)\s+((?:[A-Z][A-Za-z'\-]*\s+)+(?:National|State|Provincial)(?:\s+Park)?)`),
	regexp.MustCompile(`(?i)(?:\bin|\bat|\bnear|\baround|\bto)\s+([A-Za-z][A-Za-z'\- ]*?)(?:\s*(?:,|\.|$)|\s+(?:for|with|and|to)\b)`),
}

// Activities are checked in this fixed order; the first case-insensitive
// substring hit wins.
var activityVocabulary = []string{
	"hiking", "camping", "backpacking", "climbing", "kayaking", "canoeing",
	"rafting", "fishing", "skiing", "snowboarding", "snowshoeing", "biking",
	"mountain biking", "bird watching", "wildlife viewing", "photography",
	"stargazing",
}

var durationRule = regexp.MustCompile(`(?i)(\d+)\s*-?\s*(day|week)s?\b`)

// Difficulty buckets, checked in order; the first bucket with any substring
// hit wins.
var difficultyBuckets = []struct {
	level    string
	synonyms []string
}{
	{"easy", []string{"easy", "beginner", "simple", "gentle", "mild"}},
	{"moderate", []string{"moderate", "intermediate", "medium"}},
	{"difficult", []string{"difficult", "hard", "challenging", "strenuous", "tough", "advanced"}},
}

// ExtractSearchTerms pulls location, activity, duration and difficulty hints
// out of free text. It is a deterministic ordered-rule heuristic, not a
// classifier: identical input always yields identical output.
func ExtractSearchTerms(text string) SearchTerms {
	var terms SearchTerms
	lower := strings.ToLower(text)

	for _, rule := range locationRules {
		if m := rule.FindStringSubmatch(text); m != nil {
			terms.Location = strings.TrimSpace(m[1])
			break
		}
	}

	for _, activity := range activityVocabulary {
		if strings.Contains(lower, activity) {
			terms.Activity = activity
			break
		}
	}

	if m := durationRule.FindStringSubmatch(text); m != nil {
		value, err := strconv.Atoi(m[1])
		if err == nil {
			terms.Duration = &Duration{Value: value, Unit: strings.ToLower(m[2])}
		}
	}

	for _, bucket := range difficultyBuckets {
		for _, syn := range bucket.synonyms {
			if strings.Contains(lower, syn) {
				terms.Difficulty = bucket.level
				break
			}
		}
		if terms.Difficulty != "" {
			break
		}
	}

	return terms
}
