package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"nlsql/internal/db"
	"nlsql/internal/llm"
	"nlsql/internal/nl2sql"
	"nlsql/internal/observability"
)

// ChatService answers questions about one loaded table.
type ChatService struct {
	aiProvider llm.CompletionProvider
	executor   QueryExecutor
	schema     db.Schema
	model      string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

type Option func(*ChatService)

func WithLogger(logger *slog.Logger) Option {
	return func(cs *ChatService) { cs.logger = logger }
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(cs *ChatService) { cs.metrics = metrics }
}

// WithModel overrides the provider's default model for every request.
func WithModel(model string) Option {
	return func(cs *ChatService) { cs.model = model }
}

// NewChatService creates a new instance of ChatService. The schema is captured
// once; later changes to the table are not reflected in prompts.
func NewChatService(aiProvider llm.CompletionProvider, executor QueryExecutor, schema db.Schema, opts ...Option) *ChatService {
	cs := &ChatService{
		aiProvider: aiProvider,
		executor:   executor,
		schema:     schema,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Ask runs one question through prompt, completion, normalization and
// execution. On a query failure the returned Answer is still populated up to
// the normalized query.
func (cs *ChatService) Ask(ctx context.Context, question string) (*Answer, error) {
	cs.metrics.ObserveQuestion()

	// Step 1: Build the prompt from the table definition
	prompt := nl2sql.CombinePrompts(nl2sql.TableDefinition(cs.schema), question)
	answer := &Answer{Question: question, Prompt: prompt}
	cs.logger.Debug("prompt built", slog.String("prompt", prompt))

	// Step 2: Get the completion
	req := nl2sql.DecodingParams(prompt)
	req.Model = cs.model

	start := time.Now()
	completion, err := cs.aiProvider.Complete(ctx, req)
	cs.metrics.ObserveCompletion(cs.aiProvider.Name(), err, time.Since(start))
	if err != nil {
		return answer, fmt.Errorf("%w: %s: %w", ErrRemote, cs.aiProvider.Name(), err)
	}

	// Step 3: Rebuild the SELECT statement
	query, err := nl2sql.HandleResponse(completion)
	if err != nil {
		return answer, fmt.Errorf("%w: %s: %w", ErrRemote, cs.aiProvider.Name(), err)
	}
	answer.Completion = completion.Choices[0].Text
	answer.Query = query
	cs.logger.Info("sql query", slog.String("query", query))

	// Step 4: Execute the SQL Query and get the Result
	start = time.Now()
	result, err := cs.executor.ExecuteQuery(ctx, query)
	cs.metrics.ObserveQuery(err, time.Since(start))
	if err != nil {
		return answer, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	answer.Result = result
	cs.logger.Debug("query executed", slog.Int("rows", len(result.Rows)))

	return answer, nil
}

// LoadSource reads the file at path into a fresh engine and returns it with
// the schema the prompts will use. An empty tableName is derived from path.
func LoadSource(ctx context.Context, driverName, path, tableName string) (*db.HDb, db.Schema, error) {
	if tableName == "" {
		tableName = db.TableNameFromPath(path)
	}

	data, err := db.ReadDataset(path)
	if err != nil {
		return nil, db.Schema{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	hdb, err := db.LoadTable(ctx, driverName, data, tableName)
	if err != nil {
		return nil, db.Schema{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	schema, err := hdb.LoadSchema(ctx, tableName)
	if err != nil {
		_ = hdb.Close()
		return nil, db.Schema{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	return hdb, schema, nil
}
