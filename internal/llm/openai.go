package llm

import (
	"context"
	"math"

	"github.com/sashabaranov/go-openai"
)

const ProviderOpenAI = "openai"

type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for the credential. An empty baseURL keeps
// the public API endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}

func NewOpenAIProvider(client *openai.Client, model string) *OpenAIProvider {
	return &OpenAIProvider{client: client, model: model}
}

func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Complete calls the legacy text completion endpoint, which continues the
// prompt without echoing it back.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	res, err := p.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:            model,
		Prompt:           req.Prompt,
		Temperature:      nonZero(req.Temperature),
		TopP:             req.TopP,
		FrequencyPenalty: req.FrequencyPenalty,
		PresencePenalty:  req.PresencePenalty,
		MaxTokens:        req.MaxTokens,
		Stop:             req.Stop,
	})
	if err != nil {
		return nil, err
	}
	if len(res.Choices) == 0 {
		return nil, ErrNoChoices
	}

	return fromOpenAICompletion(res), nil
}

// ------------------Private helper function------------------

// nonZero keeps a zero temperature on the wire; the request field is
// omitempty and the API default is 1.
func nonZero(v float32) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return v
}

func fromOpenAICompletion(res openai.CompletionResponse) *CompletionResult {
	result := &CompletionResult{
		Provider: ProviderOpenAI,
		Model:    res.Model,
		Choices:  make([]Choice, len(res.Choices)),
	}
	for i, choice := range res.Choices {
		result.Choices[i] = Choice{
			Text:         choice.Text,
			FinishReason: choice.FinishReason,
		}
	}
	return result
}
