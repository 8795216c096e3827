package quiz

import (
	"strings"

	"github.com/idoneo/backend/internal/models"
)

// Legacy imports stored the correct option inconsistently: sometimes a bare
// letter, sometimes decorated ("A)", "c.", "[b]"). Every comparison site must
// go through NormalizeOption so the whole codebase agrees on equality.

const punctuation = ".,:;()[]"

// NormalizeOption lowercases a stored option value and strips surrounding
// punctuation, brackets, and whitespace. Returns "" when nothing survives.
func NormalizeOption(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, raw)
	return strings.ToLower(strings.TrimSpace(cleaned))
}

// CorrectKey resolves the normalized correct option for a question, checking
// the legacy column fallback order: correct_option, correct_answer, answer.
// Returns "" when no column yields a usable value; callers treat that as
// "always wrong if answered".
func CorrectKey(q models.Question) string {
	for _, raw := range []*string{q.CorrectOption, q.CorrectAnswer, q.Answer} {
		if raw == nil || *raw == "" {
			continue
		}
		if norm := NormalizeOption(*raw); norm != "" {
			return norm
		}
	}
	return ""
}

// ValidOption reports whether key is one of the four presentable options.
func ValidOption(key string) bool {
	switch key {
	case "a", "b", "c", "d":
		return true
	}
	return false
}
