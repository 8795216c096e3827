package quiz

import (
	"testing"

	"github.com/idoneo/backend/internal/models"
)

func TestNormalizeOption(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"a", "a"},
		{"A", "a"},
		{"A)", "a"},
		{" c.", "c"},
		{"[b]", "b"},
		{"(D)", "d"},
		{"b:", "b"},
		{"  B  ", "b"},
		{"", ""},
		{".,;", ""},
		{"risposta a", "risposta a"},
	}

	for _, tt := range tests {
		if got := NormalizeOption(tt.raw); got != tt.want {
			t.Errorf("NormalizeOption(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCorrectKeyFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		q    models.Question
		want string
	}{
		{"correct_option wins", models.Question{CorrectOption: strPtr("A)"), CorrectAnswer: strPtr("b"), Answer: strPtr("c")}, "a"},
		{"falls back to correct_answer", models.Question{CorrectAnswer: strPtr("B."), Answer: strPtr("c")}, "b"},
		{"falls back to answer", models.Question{Answer: strPtr("[c]")}, "c"},
		{"empty column skipped", models.Question{CorrectOption: strPtr(""), CorrectAnswer: strPtr("d")}, "d"},
		{"punctuation-only column skipped", models.Question{CorrectOption: strPtr(".."), CorrectAnswer: strPtr("a")}, "a"},
		{"nothing defined", models.Question{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CorrectKey(tt.q); got != tt.want {
				t.Errorf("CorrectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidOption(t *testing.T) {
	for _, key := range []string{"a", "b", "c", "d"} {
		if !ValidOption(key) {
			t.Errorf("ValidOption(%q) = false, want true", key)
		}
	}
	for _, key := range []string{"", "e", "A", "ab"} {
		if ValidOption(key) {
			t.Errorf("ValidOption(%q) = true, want false", key)
		}
	}
}
