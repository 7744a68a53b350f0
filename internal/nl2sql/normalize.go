package nl2sql

import (
	"strings"

	"nlsql/internal/llm"
)

// HandleResponse extracts the first candidate and rebuilds the statement the
// prompt started. The API does not echo the prompt's trailing SELECT.
func HandleResponse(result *llm.CompletionResult) (string, error) {
	if result == nil || len(result.Choices) == 0 {
		return "", llm.ErrNoChoices
	}
	return NormalizeQuery(result.Choices[0].Text), nil
}

// NormalizeQuery re-prepends the SELECT keyword:
//
//	" * FROM t"        -> "Select * FROM t"
//	"Select * FROM t"  -> unchanged
//	"* FROM t"         -> "Select * FROM t"
//
// The prefix check is case-sensitive, so a completion that starts with
// "SELECT" becomes "Select SELECT ..." and will not execute.
// TODO: decide whether to accept any casing of the keyword; callers currently
// see the engine's syntax error for those completions.
func NormalizeQuery(text string) string {
	switch {
	case strings.HasPrefix(text, " "):
		return "Select" + text
	case strings.HasPrefix(text, "Select"):
		return text
	default:
		return "Select " + text
	}
}
