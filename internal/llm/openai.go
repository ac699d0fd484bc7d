package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const summarizeSystemPrompt = "You are a helpful assistant that creates concise summaries of wellness conversations in JSON format."

const summarizePromptTemplate = `Analyze the following conversation and create a concise summary.

Conversation:
%s

Provide a summary in the following JSON format:
{
  "summary": "A brief 2-3 sentence summary of the entire conversation",
  "key_topics": ["topic1", "topic2", "topic3"],
  "sentiment": "positive/neutral/concerned",
  "insights": "Key insights about the user's wellness journey"
}

Focus on:
- Main wellness concerns discussed
- Progress or patterns noticed
- User's emotional state
- Important context for future conversations

Respond ONLY with valid JSON, no additional text.`

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint
// (OpenAI, Groq, OpenRouter) selected via base URL.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a client for the given endpoint and model.
func NewOpenAI(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate produces the assistant reply for one chat turn.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message) (string, error) {
	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    oaMsgs,
		Temperature: 0.7,
		MaxTokens:   1024,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarize asks the model to condense a transcript into structured JSON.
func (c *OpenAIClient) Summarize(ctx context.Context, transcript string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(summarizePromptTemplate, transcript)},
		},
		Temperature: 0.5,
		MaxTokens:   512,
		TopP:        0.9,
	})
	if err != nil {
		return "", fmt.Errorf("create summary completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
