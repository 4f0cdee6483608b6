package deliberation

import (
	"strings"
	"unicode"
)

// DefaultAgreementMarkers signal that a reply agrees with the discussion.
// Markers match whole words only, so "disagree" never counts as "agree".
var DefaultAgreementMarkers = []string{"agree", "agreed", "agrees", "concur", "concurs", "consensus", "+1"}

// DefaultNegations cancel a marker when they appear within the two words before it.
var DefaultNegations = []string{"not", "no", "never", "don't", "dont", "doesn't", "didn't", "can't", "cannot", "won't", "isn't", "without"}

// Judge decides how many other copilots agree with a reply. latest maps every
// other copilot that already spoke in this session to its most recent reply.
type Judge interface {
	Agreements(copilotID, reply string, latest map[string]string) int
}

// JudgeFunc adapts a function to the Judge interface.
type JudgeFunc func(copilotID, reply string, latest map[string]string) int

// Agreements calls f(copilotID, reply, latest).
func (f JudgeFunc) Agreements(copilotID, reply string, latest map[string]string) int {
	return f(copilotID, reply, latest)
}

// MarkerJudge counts the other copilots whose most recent reply contains a
// non-negated agreement marker (case-insensitive, whole words).
type MarkerJudge struct {
	Markers   []string
	Negations []string
}

// NewMarkerJudge creates a MarkerJudge with the default markers and negations.
func NewMarkerJudge() MarkerJudge {
	return MarkerJudge{
		Markers:   append([]string(nil), DefaultAgreementMarkers...),
		Negations: append([]string(nil), DefaultNegations...),
	}
}

// Agreements implements Judge.
func (j MarkerJudge) Agreements(copilotID, _ string, latest map[string]string) int {
	markers := make([][]string, 0, len(j.Markers))
	for _, m := range j.Markers {
		if words := tokenize(m); len(words) > 0 {
			markers = append(markers, words)
		}
	}

	negations := make(map[string]struct{}, len(j.Negations))
	for _, n := range j.Negations {
		negations[strings.ToLower(n)] = struct{}{}
	}

	n := 0
	for name, reply := range latest {
		if name == copilotID {
			continue
		}
		if j.agrees(tokenize(reply), markers, negations) {
			n++
		}
	}
	return n
}

func (j MarkerJudge) agrees(words []string, markers [][]string, negations map[string]struct{}) bool {
	for i := range words {
		for _, m := range markers {
			if !hasPrefix(words[i:], m) {
				continue
			}
			if !negated(words[:i], negations) {
				return true
			}
		}
	}
	return false
}

func hasPrefix(words, marker []string) bool {
	if len(words) < len(marker) {
		return false
	}
	for k, w := range marker {
		if words[k] != w {
			return false
		}
	}
	return true
}

func negated(before []string, negations map[string]struct{}) bool {
	for k := len(before) - 1; k >= 0 && k >= len(before)-2; k-- {
		if _, ok := negations[before[k]]; ok {
			return true
		}
	}
	return false
}

// tokenize lowercases text and splits it into words. Apostrophes and '+'
// stay inside words so "don't" and "+1" survive.
func tokenize(text string) []string {
	text = strings.ToLower(strings.ReplaceAll(text, "’", "'"))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '+'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "'"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// FixedJudge reports the same agreement count for every reply.
type FixedJudge int

// Agreements implements Judge.
func (f FixedJudge) Agreements(string, string, map[string]string) int { return int(f) }
