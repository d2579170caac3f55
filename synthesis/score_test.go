package synthesis

import (
	"errors"
	"testing"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{"labeled score", "Answer: Paris\nScore: 85", 85, false},
		{"labeled confidence", "Confidence: 42.5", 42.5, false},
		{"labeled with equals", "score = 70", 70, false},
		{"label wins over other numbers", "Found 3 cities.\nScore: 60", 60, false},
		{"last bare number fallback", "I would rate this answer 90", 90, false},
		{"multiple bare numbers take last", "between 10 and 20", 20, false},
		{"clamped above", "Score: 150", 100, false},
		{"surrounding prose tolerated", "Sure! Here you go. Score: 55. Hope that helps.", 55, false},
		{"no number", "I cannot rate this.", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConfidence(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrUnparseable) {
					t.Fatalf("expected ErrUnparseable, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseConfidence(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractAnswer(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"labeled pair", "Answer: Paris\nScore: 80", "Paris"},
		{"multiline answer", "Answer: Paris,\nthe capital.\nScore: 80", "Paris,\nthe capital."},
		{"no labels", "just text", "just text"},
		{"confidence label stripped", "Berlin\nConfidence: 33", "Berlin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractAnswer(tt.text); got != tt.want {
				t.Errorf("extractAnswer(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
