package providers

import (
	"context"
	"fmt"
	"os"
	"time"

	openai "github.com/openai/openai-go/v2"

	"github.com/zip2job/zip2job/internal/common"
)

// OpenAIProvider completes prompts through the OpenAI chat API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider wraps a configured client. The chat model defaults to
// gpt-4o-mini and can be overridden with OPENAI_CHAT_MODEL.
func NewOpenAIProvider(client openai.Client) *OpenAIProvider {
	model := os.Getenv("OPENAI_CHAT_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	common.Logger().Info("llm: openai provider configured", "model", model)
	return &OpenAIProvider{client: client, model: model}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) Available() bool { return true }

// Complete sends the prompt as a single user message with a low
// temperature; callers enforce the response contract themselves.
func (o *OpenAIProvider) Complete(ctx context.Context, prompt string, deadline time.Duration) (string, error) {
	if deadline <= 0 {
		deadline = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	logger := common.Logger()
	logger.Debug("llm: sending completion request", "model", o.model, "prompt_len", len(prompt))
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		logger.Warn("llm: completion failed", "error", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	logger.Debug("llm: completion succeeded")
	return resp.Choices[0].Message.Content, nil
}
