package agent

import (
	"encoding/json"

	jsonutil "github.com/richinex/loom/internal/json"
)

// directiveKind tags the outcome of parsing a reasoning response. Malformed
// output is an expected, frequent case, so it is a first-class result rather
// than an error.
type directiveKind int

const (
	directiveToolCall directiveKind = iota
	directiveFinish
	directiveParseError
)

// parseDirective turns a free-form reasoning response into a structured
// directive. A response parses only if it is a finish instruction or names a
// tool; anything else is a parse error the loop can recover from.
func parseDirective(response string) (Directive, directiveKind) {
	extracted, err := jsonutil.ExtractJSON(response)
	if err != nil {
		return Directive{}, directiveParseError
	}

	var d Directive
	if err := json.Unmarshal([]byte(extracted), &d); err != nil {
		return Directive{}, directiveParseError
	}

	if d.IsFinal {
		return d, directiveFinish
	}
	if d.Action != nil && d.Action.Tool != "" {
		return d, directiveToolCall
	}
	return d, directiveParseError
}
