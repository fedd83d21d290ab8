package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

var (
	// ErrOpenAIUnavailable indicates the OpenAI service is not configured or unavailable.
	ErrOpenAIUnavailable = errors.New("OpenAI service unavailable")
	// ErrOpenAIRequest indicates an error during the OpenAI API request.
	ErrOpenAIRequest = errors.New("OpenAI request failed")
	// ErrOpenAIResponse indicates an error parsing the OpenAI response.
	ErrOpenAIResponse = errors.New("failed to parse OpenAI response")
)

// DefaultSystemPrompt is used when no managed prompt is configured.
const DefaultSystemPrompt = `You are a non-medical study coach.

You receive a single student's cognitive profile and, when available, their circadian sync score. Base every conclusion only on the provided data.

Your goals:
- Describe the student's strongest and weakest cognitive domains in clear, neutral language.
- Point out trends (improving, declining, stable) and how consistent the scores are.
- Relate peak performance time and learning readiness to the school and study schedule.
- Mention social jetlag and sleep regularity when the sync data shows it matters.
- Give practical suggestions for when and how to study.

Rules:
- Do NOT provide medical advice or diagnoses.
- Do NOT mention diseases, disorders, doctors, or treatment.
- If data quality is low (few records, low confidence), say so explicitly.
- Be concise and concrete.

You must respond as strict JSON with exactly this shape:

{
  "summary": "2-3 sentences summarizing the profile and schedule alignment.",
  "observations": [
    "3-6 items about domain scores, trends, peak time and data quality.",
    "If sync data is present, at least one item about school or study alignment."
  ],
  "guidance": [
    "3-5 concrete, non-medical suggestions tailored to these numbers.",
    "Include at least one suggestion about study timing."
  ]
}

No extra fields. No comments. No backticks.`

const userPromptTemplate = `Here is JSON describing this student.

- "profile.domains" holds 0-100 scores per cognitive domain with 7 and 30 day averages and a confidence.
- "profile.trends" holds weekly change and trajectory per domain.
- "profile.peak_performance" is the best observed hour and day to train.
- "profile.data_quality.reliability" (0-100) says how much to trust the profile.
- "sync", if present, holds the sync score, school and study alignment, social jetlag and chronotype.

JSON:

%s

Based on this data, respond in the required JSON format.`

// InsightsLLM generates coaching insights using an LLM.
type InsightsLLM interface {
	// GenerateInsights takes a context object and returns LLM-generated insights.
	GenerateInsights(ctx context.Context, insightsCtx *domain.InsightsContext) (*domain.LLMInsightsOutput, error)
}

// OpenAIClient implements InsightsLLM using the OpenAI API.
type OpenAIClient struct {
	client       openai.Client
	model        string
	systemPrompt string
}

// NewOpenAIClient creates a client for generating insights.
// Returns nil if apiKey is empty.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	if apiKey == "" {
		return nil
	}

	if model == "" {
		model = "gpt-4o-mini"
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAIClient{
		client:       client,
		model:        model,
		systemPrompt: DefaultSystemPrompt,
	}
}

// WithSystemPrompt replaces the system prompt, e.g. with one managed in
// Langfuse. An empty prompt keeps the current one.
func (c *OpenAIClient) WithSystemPrompt(prompt string) *OpenAIClient {
	if c != nil && prompt != "" {
		c.systemPrompt = prompt
	}
	return c
}

// Model returns the chat model used for completions.
func (c *OpenAIClient) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// GenerateInsights calls OpenAI and decodes its JSON answer.
func (c *OpenAIClient) GenerateInsights(ctx context.Context, insightsCtx *domain.InsightsContext) (*domain.LLMInsightsOutput, error) {
	if c == nil {
		return nil, ErrOpenAIUnavailable
	}

	// Serialize context to JSON
	contextJSON, err := json.MarshalIndent(insightsCtx, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to serialize context: %v", ErrOpenAIRequest, err)
	}

	userPrompt := fmt.Sprintf(userPromptTemplate, string(contextJSON))

	// Call OpenAI
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIRequest, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrOpenAIResponse)
	}

	content := resp.Choices[0].Message.Content

	// Parse the JSON response
	var output domain.LLMInsightsOutput
	if err := json.Unmarshal([]byte(content), &output); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenAIResponse, err)
	}

	return &output, nil
}
