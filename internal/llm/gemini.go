package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const ProviderGemini = "gemini"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, option.WithAPIKey(apiKey))
}

func NewGeminiAIProvider(client *genai.Client, model string) *GeminiProvider {
	return &GeminiProvider{client: client, model: model}
}

func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

func (p *GeminiProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	model := p.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)
	model.SetTopP(req.TopP)
	model.SetMaxOutputTokens(int32(req.MaxTokens))
	model.StopSequences = req.Stop

	res, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}

	result := fromGeminiResponse(modelName, res)
	if len(result.Choices) == 0 {
		return nil, ErrNoChoices
	}
	return result, nil
}

// -----------------Private Helper Functions-----------------

func fromGeminiResponse(modelName string, res *genai.GenerateContentResponse) *CompletionResult {
	result := &CompletionResult{Provider: ProviderGemini, Model: modelName}
	if res == nil {
		return result
	}
	for _, candidate := range res.Candidates {
		if candidate == nil {
			continue
		}
		result.Choices = append(result.Choices, Choice{
			Text:         candidateText(candidate),
			FinishReason: strings.ToLower(fmt.Sprint(candidate.FinishReason)),
		})
	}
	return result
}

func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
			continue
		}
		fmt.Fprintf(&sb, "%v", part)
	}
	return sb.String()
}
