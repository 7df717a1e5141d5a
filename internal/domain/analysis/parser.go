package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxQuestions caps follow-up questions extracted from model output.
const DefaultMaxQuestions = 5

// Lines shorter than this containing a "?" are treated as fragments
// ("ok?") rather than standalone questions.
const minStandaloneLen = 20

var (
	// 1. Question?  or  1) Question?
	numberedRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.+\?)\s*$`)
	// - Question?  or  • Question?  or  * Question?
	bulletedRe = regexp.MustCompile(`^\s*[-•*]\s+(.+\?)\s*$`)
	// Standalone line starting with a capital and ending in ?
	standaloneRe = regexp.MustCompile(`^\s*([A-Z].+\?)\s*$`)
)

// DefaultQuestions returns the generic investigative questions substituted
// when nothing could be extracted from a degraded response, so the
// investigator never gets an empty list.
func DefaultQuestions() []string {
	return []string{
		"What additional details can you provide about this situation?",
		"Can you clarify the timeline of events?",
		"Who else was involved or present?",
	}
}

// ExtractQuestions pulls follow-up questions out of free-form model output.
// It matches line by line, first-match-wins: numbered lists, then bulleted
// lists, then standalone question lines. Duplicates are collapsed
// case-insensitively keeping the first occurrence, and at most max entries
// are returned.
func ExtractQuestions(text string, max int) []string {
	if max <= 0 {
		max = DefaultMaxQuestions
	}

	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := numberedRe.FindStringSubmatch(line); m != nil {
			questions = append(questions, strings.TrimSpace(m[1]))
			continue
		}

		if m := bulletedRe.FindStringSubmatch(line); m != nil {
			questions = append(questions, strings.TrimSpace(m[1]))
			continue
		}

		if strings.Contains(line, "?") && utf8.RuneCountInString(line) > minStandaloneLen {
			if m := standaloneRe.FindStringSubmatch(line); m != nil {
				questions = append(questions, strings.TrimSpace(m[1]))
			}
		}
	}

	seen := make(map[string]bool, len(questions))
	unique := make([]string, 0, len(questions))
	for _, q := range questions {
		norm := strings.ToLower(strings.TrimSpace(q))
		if seen[norm] {
			continue
		}
		seen[norm] = true
		unique = append(unique, q)
	}

	if len(unique) > max {
		unique = unique[:max]
	}
	return unique
}

// SplitNarrative returns the analysis narrative portion of raw model output.
// Text before a "Suggested Questions:" marker (bold or plain variant) is the
// narrative with its "Analysis:" label stripped; without a marker the whole
// text is the narrative, questions included.
func SplitNarrative(text string) string {
	if strings.Contains(text, "**Suggested Questions:**") {
		parts := strings.SplitN(text, "**Suggested Questions:**", 2)
		return strings.TrimSpace(strings.ReplaceAll(parts[0], "**Analysis:**", ""))
	}
	if strings.Contains(text, "Suggested Questions:") {
		parts := strings.SplitN(text, "Suggested Questions:", 2)
		return strings.TrimSpace(strings.ReplaceAll(parts[0], "Analysis:", ""))
	}
	return text
}

// ParseDegraded builds an Analysis from raw model text after the structured
// path failed. Contradictions, missing information and key entities are only
// populated by the structured path and stay empty here.
func ParseDegraded(raw string, maxQuestions int) *Analysis {
	questions := ExtractQuestions(raw, maxQuestions)
	if len(questions) == 0 {
		questions = DefaultQuestions()
	}
	return &Analysis{
		Analysis:            SplitNarrative(raw),
		SuggestedQuestions:  questions,
		ContradictionsFound: []string{},
		MissingInformation:  []string{},
		KeyEntities:         []string{},
	}
}
