package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
)

func TestFromGeminiResponse(t *testing.T) {
	res := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(" * FROM Sales"), genai.Text(" LIMIT 5")}}},
			nil,
			{Content: nil},
		},
	}

	result := fromGeminiResponse("gemini-1.5-flash", res)

	assert.Equal(t, ProviderGemini, result.Provider)
	assert.Equal(t, "gemini-1.5-flash", result.Model)
	if assert.Len(t, result.Choices, 2) {
		assert.Equal(t, " * FROM Sales LIMIT 5", result.Choices[0].Text)
		assert.Equal(t, "", result.Choices[1].Text)
	}
}

func TestFromGeminiResponseNil(t *testing.T) {
	assert.Empty(t, fromGeminiResponse("gemini-1.5-flash", nil).Choices)
}
