package chatbot

import (
	"context"

	"nlsql/internal/db"
)

type QueryExecutor interface {
	ExecuteQuery(ctx context.Context, query string) (*db.QueryResult, error)
}

type Asker interface {
	Ask(ctx context.Context, question string) (*Answer, error)
}

// Answer records every intermediate value of one question.
type Answer struct {
	Question   string          `json:"question"`
	Prompt     string          `json:"prompt"`
	Completion string          `json:"completion"`
	Query      string          `json:"query"`
	Result     *db.QueryResult `json:"result,omitempty"`
}

type QueryRequest struct {
	Question string `json:"question" binding:"required"`
}

type QueryResponse struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Query string `json:"query,omitempty"`
}
