// Package extract turns free-form text into validated goal-store
// mutations via an external language model.
package extract

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the language-model collaborator. Implementations return
// raw response text; parsing and validation happen in the pipeline.
type Client interface {
	// ExtractGoals asks the model to pull structured goals out of text.
	// fileContext is optional supporting material shown to the model.
	ExtractGoals(ctx context.Context, text, fileContext string) (string, error)

	// Respond returns a plain conversational answer.
	Respond(ctx context.Context, message string) (string, error)

	// ListModels returns the model names available at the endpoint.
	ListModels(ctx context.Context) ([]string, error)
}

const extractionPrompt = `You are a goal planning assistant. Analyze the provided text. If it describes goals, tasks, or plans, extract them as JSON: an object with a "goals" array where each goal has "name" (string, required), "description" (string), "priority" ("High", "Medium", or "Low"), and "dependencies" (array of goal names this goal depends on). If the text is a general question or statement not about defining goals, respond conversationally in plain text instead.

Example:
{"goals": [
  {"name": "Learn Python", "description": "Master Python programming", "priority": "High", "dependencies": []},
  {"name": "Build Web App", "description": "Develop a full-stack web application", "priority": "Medium", "dependencies": ["Learn Python"]}
]}
`

// OpenAIClient talks to any OpenAI-compatible chat endpoint, including
// a local Ollama server via its /v1 API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client for the given endpoint. baseURL may
// be empty for the real OpenAI API.
func NewOpenAIClient(baseURL, apiKey, model string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	slog.Info("initializing model client", "base_url", cfg.BaseURL, "model", model)
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// ExtractGoals implements Client.
func (c *OpenAIClient) ExtractGoals(ctx context.Context, text, fileContext string) (string, error) {
	prompt := extractionPrompt + "\nText to analyze: " + text
	if fileContext != "" {
		prompt += "\n\nAdditional context:\n" + fileContext
	}
	return c.chat(ctx, prompt)
}

// Respond implements Client.
func (c *OpenAIClient) Respond(ctx context.Context, message string) (string, error) {
	return c.chat(ctx, message)
}

func (c *OpenAIClient) chat(ctx context.Context, prompt string) (string, error) {
	slog.Debug("sending chat request", "model", c.model, "prompt_len", len(prompt))
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Error("chat request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: endpoint returned no choices", ErrUnavailable)
	}
	slog.Debug("received chat response", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// ListModels implements Client.
func (c *OpenAIClient) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		slog.Error("listing models failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}
