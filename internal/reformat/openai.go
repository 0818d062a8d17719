package reformat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// openaiReformatter uses the OpenAI chat completions API for grammar
// cleanup.
type openaiReformatter struct {
	client openai.Client
	model  string
}

func newOpenAIReformatter(model, apiKey string) *openaiReformatter {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openaiReformatter{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (o *openaiReformatter) Reformat(ctx context.Context, text string) (string, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(grammarPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil {
		return "", fmt.Errorf("reformat: openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("reformat: openai returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
