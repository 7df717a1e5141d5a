package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractQuestionsNumberedList(t *testing.T) {
	text := "1. When did this happen?\n2. Where were you at the time?\n3) Who else saw this?"

	got := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, []string{
		"When did this happen?",
		"Where were you at the time?",
		"Who else saw this?",
	}, got)
}

func TestExtractQuestionsBulletedList(t *testing.T) {
	text := "- Who was driving the car?\n• Where did you meet him?\n* What happened after midnight?"

	got := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, []string{
		"Who was driving the car?",
		"Where did you meet him?",
		"What happened after midnight?",
	}, got)
}

func TestExtractQuestionsStandaloneLine(t *testing.T) {
	text := "Where exactly were you on Friday evening?"

	got := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, []string{"Where exactly were you on Friday evening?"}, got)
}

func TestExtractQuestionsRejectsShortFragments(t *testing.T) {
	// short lines with a question mark are fragments, not questions
	got := ExtractQuestions("ok?\nReally?\nsure about that?", DefaultMaxQuestions)

	assert.Empty(t, got)
}

func TestExtractQuestionsStandaloneGateCountsRunes(t *testing.T) {
	// 19 characters but 21 bytes; the 20-character floor counts characters
	short := "Où étiez-vous hier?"
	assert.Empty(t, ExtractQuestions(short, DefaultMaxQuestions))

	long := "Où étiez-vous hier après-midi?"
	assert.Equal(t, []string{long}, ExtractQuestions(long, DefaultMaxQuestions))
}

func TestExtractQuestionsRejectsLowercaseStandalone(t *testing.T) {
	got := ExtractQuestions("but where were you standing at that point?", DefaultMaxQuestions)

	assert.Empty(t, got)
}

func TestExtractQuestionsDedupesCaseInsensitive(t *testing.T) {
	text := "1. When did this happen?\n2. Where were you?\n3. when did this happen?"

	got := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, []string{"When did this happen?", "Where were you?"}, got)
}

func TestExtractQuestionsKeepsFirstSeenText(t *testing.T) {
	text := "1. Who Is Mike?\n2. who is mike?"

	got := ExtractQuestions(text, DefaultMaxQuestions)

	require.Len(t, got, 1)
	assert.Equal(t, "Who Is Mike?", got[0])
}

func TestExtractQuestionsHonorsMax(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("%d. What happened at location number %d?", i, i))
	}

	got := ExtractQuestions(strings.Join(lines, "\n"), 5)

	require.Len(t, got, 5)
	assert.Equal(t, "What happened at location number 1?", got[0])
	assert.Equal(t, "What happened at location number 5?", got[4])
}

func TestExtractQuestionsZeroMaxUsesDefault(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("%d. What happened at location number %d?", i, i))
	}

	got := ExtractQuestions(strings.Join(lines, "\n"), 0)

	assert.Len(t, got, DefaultMaxQuestions)
}

func TestExtractQuestionsSkipsNonQuestionLines(t *testing.T) {
	text := "The suspect contradicted himself.\n\n1. When did you leave the bar?\nSome closing narrative."

	got := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, []string{"When did you leave the bar?"}, got)
}

func TestExtractQuestionsIdempotent(t *testing.T) {
	text := "**Analysis:**\nUnclear.\n**Suggested Questions:**\n1. Who is Dan?\n- Where does he live?"

	first := ExtractQuestions(text, DefaultMaxQuestions)
	second := ExtractQuestions(text, DefaultMaxQuestions)

	assert.Equal(t, first, second)
}

func TestSplitNarrativeBoldMarker(t *testing.T) {
	raw := "**Analysis:**\nSomething is unclear.\n**Suggested Questions:**\n1. Who is Mike?\n2. What time exactly?"

	assert.Equal(t, "Something is unclear.", SplitNarrative(raw))
}

func TestSplitNarrativePlainMarker(t *testing.T) {
	raw := "Analysis:\nThe timeline has gaps.\nSuggested Questions:\n1. When did you arrive?"

	assert.Equal(t, "The timeline has gaps.", SplitNarrative(raw))
}

func TestSplitNarrativeNoMarkerReturnsWholeText(t *testing.T) {
	raw := "The statement is vague.\n1. Who is Dan?"

	assert.Equal(t, raw, SplitNarrative(raw))
}

func TestParseDegraded(t *testing.T) {
	raw := "**Analysis:**\nSomething is unclear.\n**Suggested Questions:**\n1. Who is Mike?\n2. What time exactly?"

	got := ParseDegraded(raw, DefaultMaxQuestions)

	assert.Equal(t, "Something is unclear.", got.Analysis)
	assert.Equal(t, []string{"Who is Mike?", "What time exactly?"}, got.SuggestedQuestions)
	assert.Empty(t, got.ContradictionsFound)
	assert.Empty(t, got.MissingInformation)
	assert.Empty(t, got.KeyEntities)
}

func TestParseDegradedSubstitutesDefaults(t *testing.T) {
	got := ParseDegraded("Nothing useful here.", DefaultMaxQuestions)

	assert.Equal(t, []string{
		"What additional details can you provide about this situation?",
		"Can you clarify the timeline of events?",
		"Who else was involved or present?",
	}, got.SuggestedQuestions)
}

func TestParseDegradedQuestionsStayInNarrativeWithoutMarker(t *testing.T) {
	// without a section marker the questions are extracted but not removed
	// from the narrative
	raw := "The alibi is thin.\n1. Who can confirm you were home?"

	got := ParseDegraded(raw, DefaultMaxQuestions)

	assert.Equal(t, raw, got.Analysis)
	assert.Equal(t, []string{"Who can confirm you were home?"}, got.SuggestedQuestions)
}
