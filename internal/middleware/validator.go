package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	maxQuestionLen = 4000
	maxAnswerLen   = 16000
	maxPromptLen   = 16000
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateQuestion checks the investigator's question field
func ValidateQuestion(q string) error {
	if strings.TrimSpace(q) == "" {
		return fmt.Errorf("question cannot be empty")
	}
	if utf8.RuneCountInString(q) > maxQuestionLen {
		return fmt.Errorf("question too long (max %d characters)", maxQuestionLen)
	}
	return nil
}

// ValidateAnswer checks the suspect's answer field
func ValidateAnswer(a string) error {
	if strings.TrimSpace(a) == "" {
		return fmt.Errorf("answer cannot be empty")
	}
	if utf8.RuneCountInString(a) > maxAnswerLen {
		return fmt.Errorf("answer too long (max %d characters)", maxAnswerLen)
	}
	return nil
}

// ValidatePrompt checks a free-form analysis chat prompt
func ValidatePrompt(p string) error {
	if strings.TrimSpace(p) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if utf8.RuneCountInString(p) > maxPromptLen {
		return fmt.Errorf("prompt too long (max %d characters)", maxPromptLen)
	}
	return nil
}

// ValidateSessionID validates a caller-supplied session id. Empty is allowed;
// a fresh id is minted downstream.
func ValidateSessionID(id string) error {
	if id == "" {
		return nil
	}
	if !sessionIDPattern.MatchString(id) {
		return fmt.Errorf("invalid session ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateEntityName validates a graph entity name path parameter
func ValidateEntityName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("entity name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 256 {
		return fmt.Errorf("entity name too long")
	}
	return nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 50 // default
	}
	if limit > 200 {
		return 200 // max limit
	}
	return limit
}

// ValidateDepth validates graph traversal depth
func ValidateDepth(depth int) int {
	if depth <= 0 {
		return 2 // default
	}
	if depth > 5 {
		return 5 // keep traversals bounded
	}
	return depth
}

// SanitizeString removes null bytes and control characters
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
