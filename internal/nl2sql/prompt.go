// Package nl2sql turns a table schema and an English question into a
// completion prompt, and turns the completion back into a SELECT statement.
package nl2sql

import (
	"fmt"
	"strings"

	"nlsql/internal/db"
	"nlsql/internal/llm"
)

const defaultDialect = "sqlite"

// TableDefinition describes the table in the comment style the completion
// model was primed with:
//
//	### sqlite table, with its properties:
//	#
//	# Sales(ORDERNUMBER,SALES)
//	#
//
// Column names are inserted verbatim; a name containing a comma or a
// parenthesis breaks the template.
func TableDefinition(schema db.Schema) string {
	dialect := schema.Dialect
	if dialect == "" {
		dialect = defaultDialect
	}
	return fmt.Sprintf("### %s table, with its properties:\n#\n# %s(%s)\n#\n",
		dialect, schema.Table, strings.Join(schema.Columns, ","))
}

// CombinePrompts appends the question to the table definition and seeds the
// completion with SELECT, so the model continues with the select list.
func CombinePrompts(tableDefinition, question string) string {
	return tableDefinition + fmt.Sprintf("### A query to answer: %s\nSELECT", question)
}

// DecodingParams is the fixed, deterministic decoding configuration. The stop
// sequences end generation at the next comment line or statement terminator.
func DecodingParams(prompt string) llm.CompletionRequest {
	return llm.CompletionRequest{
		Prompt:           prompt,
		Temperature:      0,
		TopP:             1.0,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		MaxTokens:        150,
		Stop:             []string{"#", ";"},
	}
}
