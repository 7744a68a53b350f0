package llm

import (
	"context"
	"errors"
)

var ErrNoChoices = errors.New("no choices found")

// CompletionRequest is a plain text completion: the model continues Prompt.
type CompletionRequest struct {
	Prompt           string
	Model            string
	Temperature      float32
	TopP             float32
	FrequencyPenalty float32
	PresencePenalty  float32
	MaxTokens        int
	Stop             []string
}

type Choice struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

// CompletionResult holds every candidate the provider returned.
// Consumers normally read only the first one.
type CompletionResult struct {
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Choices  []Choice `json:"choices"`
}

type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Name() string
}
