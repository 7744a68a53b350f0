package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlsql/internal/db"
)

type stubAsker struct {
	answer *Answer
	err    error
}

func (s stubAsker) Ask(_ context.Context, question string) (*Answer, error) {
	if s.answer != nil {
		s.answer.Question = question
	}
	return s.answer, s.err
}

func serve(t *testing.T, asker Asker, body string) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewChatController(asker, nil).RegisterRoutes(router)

	req := httptest.NewRequest(http.MethodPost, "/v1/query", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQueryByChat(t *testing.T) {
	asker := stubAsker{answer: &Answer{
		Query:  "Select ORDERNUMBER from Sales limit 1",
		Result: &db.QueryResult{Columns: []string{"ORDERNUMBER"}, Rows: [][]any{{int64(100)}}},
	}}

	rec := serve(t, asker, `{"question": "first order?"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"query": "Select ORDERNUMBER from Sales limit 1", "columns": ["ORDERNUMBER"], "rows": [[100]]}`, rec.Body.String())
}

func TestQueryByChatErrors(t *testing.T) {
	tests := []struct {
		name       string
		asker      Asker
		body       string
		wantStatus int
		wantQuery  string
	}{
		{
			name:       "malformed body",
			asker:      stubAsker{},
			body:       `{"question":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing question",
			asker:      stubAsker{},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "remote failure",
			asker:      stubAsker{answer: &Answer{}, err: fmt.Errorf("%w: timeout", ErrRemote)},
			body:       `{"question": "q"}`,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "query failure",
			asker:      stubAsker{answer: &Answer{Query: "Select SELECT 1"}, err: fmt.Errorf("%w: syntax error", ErrQuery)},
			body:       `{"question": "q"}`,
			wantStatus: http.StatusUnprocessableEntity,
			wantQuery:  "Select SELECT 1",
		},
		{
			name:       "unclassified failure",
			asker:      stubAsker{err: fmt.Errorf("boom")},
			body:       `{"question": "q"}`,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.asker, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantQuery, body.Query)
		})
	}
}
