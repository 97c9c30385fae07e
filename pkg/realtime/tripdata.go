package realtime

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// TripData is structured trip content recovered from assistant text. The
// payload always normalizes to a list under "trip", even when the model
// emitted a single object.
type TripData struct {
	Trips []map[string]any `json:"trip"`
}

var (
	fencedJSONRule = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	tripArrayRule  = regexp.MustCompile(`(?s)"trip"\s*:\s*\[.*?\]`)
)

// ExtractTripData scans text for embedded trip JSON and returns the parsed
// payload plus the text with the JSON removed. The second return is false
// when no trip data was found.
//
// Candidates are tried in order of reliability: a fenced json block, brace
// spans mentioning "trip", "destination", "location", or "title", a bare
// "trip" array, and finally any balanced brace span. Truncated or sloppy
// JSON is run through jsonrepair before giving up.
func ExtractTripData(text string) (*TripData, string, bool) {
	for _, candidate := range tripCandidates(text) {
		data, ok := parseTripJSON(candidate.payload)
		if !ok {
			continue
		}
		cleaned := strings.TrimSpace(strings.Replace(text, candidate.span, "", 1))
		return data, cleaned, true
	}
	return nil, text, false
}

// candidate pairs the raw payload to parse with the full span to strip
// from the surrounding text. For fenced blocks the span includes the
// fences; otherwise they are the same string.
type candidate struct {
	span    string
	payload string
}

func tripCandidates(text string) []candidate {
	var out []candidate

	if m := fencedJSONRule.FindStringSubmatch(text); m != nil {
		out = append(out, candidate{span: m[0], payload: strings.TrimSpace(m[1])})
	}
	for _, marker := range []string{`"trip"`, `"destination"`, `"location"`, `"title"`} {
		if span := braceSpanContaining(text, marker); span != "" {
			out = append(out, candidate{span: span, payload: span})
		}
	}
	if m := tripArrayRule.FindString(text); m != "" {
		out = append(out, candidate{span: m, payload: "{" + m + "}"})
	}
	if span := firstBraceSpan(text); span != "" {
		out = append(out, candidate{span: span, payload: span})
	}
	return out
}

// braceSpanContaining returns the smallest balanced {...} span that
// contains the marker, or "".
func braceSpanContaining(text, marker string) string {
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	open := strings.LastIndex(text[:idx], "{")
	if open < 0 {
		return ""
	}
	return balancedSpanFrom(text, open)
}

// firstBraceSpan returns the first balanced {...} span in text, or "".
func firstBraceSpan(text string) string {
	open := strings.Index(text, "{")
	if open < 0 {
		return ""
	}
	return balancedSpanFrom(text, open)
}

// balancedSpanFrom walks text from the opening brace at start and returns
// the balanced span, honoring strings and escapes. Returns "" when the
// braces never balance.
func balancedSpanFrom(text string, start int) string {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// parseTripJSON parses a candidate payload, repairing malformed JSON once
// before failing. Payloads with neither trip nor destination content are
// rejected so that unrelated JSON in assistant prose is left alone.
func parseTripJSON(payload string) (*TripData, bool) {
	if payload == "" {
		return nil, false
	}

	raw, err := decodeLoose(payload)
	if err != nil {
		repaired, rerr := jsonrepair.JSONRepair(payload)
		if rerr != nil {
			return nil, false
		}
		raw, err = decodeLoose(repaired)
		if err != nil {
			return nil, false
		}
	}

	return normalizeTrip(raw)
}

func decodeLoose(payload string) (map[string]any, error) {
	var raw map[string]any
	err := json.Unmarshal([]byte(payload), &raw)
	return raw, err
}

// normalizeTrip shapes parsed JSON into TripData. A "trip" key may hold a
// list or a single object; an object without a "trip" key that still looks
// like one trip (carries destination, location, or title) is wrapped as a
// one-element list.
func normalizeTrip(raw map[string]any) (*TripData, bool) {
	if v, ok := raw["trip"]; ok {
		switch t := v.(type) {
		case []any:
			trips := make([]map[string]any, 0, len(t))
			for _, item := range t {
				obj, ok := item.(map[string]any)
				if !ok {
					return nil, false
				}
				trips = append(trips, obj)
			}
			if len(trips) == 0 {
				return nil, false
			}
			return &TripData{Trips: trips}, true
		case map[string]any:
			return &TripData{Trips: []map[string]any{t}}, true
		default:
			return nil, false
		}
	}

	for _, key := range []string{"destination", "location", "title"} {
		if _, ok := raw[key]; ok {
			return &TripData{Trips: []map[string]any{raw}}, true
		}
	}

	return nil, false
}
