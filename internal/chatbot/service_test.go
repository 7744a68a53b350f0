package chatbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlsql/internal/db"
	"nlsql/internal/llm"
)

type fakeProvider struct {
	texts []string
	err   error
	got   []llm.CompletionRequest
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResult, error) {
	p.got = append(p.got, req)
	if p.err != nil {
		return nil, p.err
	}
	result := &llm.CompletionResult{Provider: "fake"}
	for _, text := range p.texts {
		result.Choices = append(result.Choices, llm.Choice{Text: text, FinishReason: "stop"})
	}
	return result, nil
}

func writeSalesCSV(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("ORDERNUMBER,SALES\n100,200.5\n101,300.0\n"), 0o600))
	return path
}

func newSalesService(t *testing.T, provider llm.CompletionProvider, opts ...Option) *ChatService {
	t.Helper()

	hdb, schema, err := LoadSource(context.Background(), "sqlite", writeSalesCSV(t, "sales.csv"), "Sales")
	require.NoError(t, err)
	t.Cleanup(func() { _ = hdb.Close() })

	return NewChatService(provider, hdb, schema, opts...)
}

func TestAsk(t *testing.T) {
	provider := &fakeProvider{texts: []string{" ORDERNUMBER FROM Sales ORDER BY SALES DESC LIMIT 1"}}
	service := newSalesService(t, provider, WithModel("davinci-002"))

	answer, err := service.Ask(context.Background(), "Which order sold the most?")
	require.NoError(t, err)

	assert.Equal(t, "### sqlite table, with its properties:\n#\n# Sales(ORDERNUMBER,SALES)\n#\n"+
		"### A query to answer: Which order sold the most?\nSELECT", answer.Prompt)
	assert.Equal(t, "Select ORDERNUMBER FROM Sales ORDER BY SALES DESC LIMIT 1", answer.Query)
	assert.Equal(t, [][]any{{int64(101)}}, answer.Result.Rows)

	require.Len(t, provider.got, 1)
	assert.Equal(t, answer.Prompt, provider.got[0].Prompt)
	assert.Equal(t, "davinci-002", provider.got[0].Model)
	assert.Equal(t, 150, provider.got[0].MaxTokens)
	assert.Equal(t, []string{"#", ";"}, provider.got[0].Stop)
}

func TestAskRemoteFailure(t *testing.T) {
	remoteErr := errors.New("401 invalid api key")
	service := newSalesService(t, &fakeProvider{err: remoteErr})

	answer, err := service.Ask(context.Background(), "How many orders?")

	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, remoteErr)
	assert.NotEmpty(t, answer.Prompt)
	assert.Empty(t, answer.Query)
}

func TestAskWithoutChoices(t *testing.T) {
	service := newSalesService(t, &fakeProvider{})

	_, err := service.Ask(context.Background(), "How many orders?")

	assert.ErrorIs(t, err, ErrRemote)
	assert.ErrorIs(t, err, llm.ErrNoChoices)
}

func TestAskDoublePrefixedQueryFails(t *testing.T) {
	service := newSalesService(t, &fakeProvider{texts: []string{"SELECT * FROM Sales"}})

	answer, err := service.Ask(context.Background(), "Show everything")

	assert.ErrorIs(t, err, ErrQuery)
	assert.Equal(t, "Select SELECT * FROM Sales", answer.Query)
	assert.Nil(t, answer.Result)
}

func TestAskUsesSchemaCapturedAtLoad(t *testing.T) {
	provider := &fakeProvider{texts: []string{" COUNT(*) FROM Sales"}}
	hdb, schema, err := LoadSource(context.Background(), "sqlite", writeSalesCSV(t, "sales.csv"), "Sales")
	require.NoError(t, err)
	t.Cleanup(func() { _ = hdb.Close() })

	service := NewChatService(provider, hdb, schema)
	_, err = hdb.ExecContext(context.Background(), "ALTER TABLE Sales ADD COLUMN STATUS TEXT")
	require.NoError(t, err)

	_, err = service.Ask(context.Background(), "How many orders?")
	require.NoError(t, err)
	assert.Contains(t, provider.got[0].Prompt, "# Sales(ORDERNUMBER,SALES)\n")
}

func TestLoadSource(t *testing.T) {
	ctx := context.Background()

	t.Run("derives table name from path", func(t *testing.T) {
		hdb, schema, err := LoadSource(ctx, "sqlite", writeSalesCSV(t, "orders.csv"), "")
		require.NoError(t, err)
		t.Cleanup(func() { _ = hdb.Close() })

		assert.Equal(t, db.Schema{Table: "orders", Columns: []string{"ORDERNUMBER", "SALES"}, Dialect: "sqlite"}, schema)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadSource(ctx, "sqlite", filepath.Join(t.TempDir(), "missing.csv"), "Sales")
		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("incompatible columns", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dup.csv")
		require.NoError(t, os.WriteFile(path, []byte("A,A\n1,2\n"), 0o600))

		_, _, err := LoadSource(ctx, "sqlite", path, "Sales")
		assert.ErrorIs(t, err, ErrLoad)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, _, err := LoadSource(ctx, "oracle", writeSalesCSV(t, "sales.csv"), "Sales")
		assert.ErrorIs(t, err, ErrLoad)
	})
}
