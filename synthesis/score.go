package synthesis

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	labeledScore = regexp.MustCompile(`(?i)\b(?:score|confidence)\s*[:=]\s*(\d+(?:\.\d+)?)`)
	bareNumber   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	scoreLine    = regexp.MustCompile(`(?i)^\s*(?:score|confidence)\s*[:=]`)
	answerPrefix = regexp.MustCompile(`(?i)^answer\s*:\s*`)
)

// ParseConfidence extracts a numeric confidence from a generated response.
//
// A labeled score ("Score: 85" or "Confidence: 85") wins; failing that, the
// last bare number in the text is used. Results are clamped to [0,100].
// Returns ErrUnparseable when no number can be located; never panics on
// malformed input.
func ParseConfidence(text string) (float64, error) {
	if m := labeledScore.FindStringSubmatch(text); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, ErrUnparseable
		}
		return clampScore(v), nil
	}

	all := bareNumber.FindAllString(text, -1)
	if len(all) == 0 {
		return 0, ErrUnparseable
	}
	v, err := strconv.ParseFloat(all[len(all)-1], 64)
	if err != nil {
		return 0, ErrUnparseable
	}
	return clampScore(v), nil
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// extractAnswer strips score lines and a leading "Answer:" label from a
// rerank response, leaving the answer text itself.
func extractAnswer(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if scoreLine.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	out := strings.TrimSpace(strings.Join(kept, "\n"))
	return strings.TrimSpace(answerPrefix.ReplaceAllString(out, ""))
}
