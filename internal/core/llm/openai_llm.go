package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"ytbrain/internal/core"
)

// OpenAILLM is an alternative LLMProvider backed by the OpenAI chat
// completion API. Selected with LLM_PROVIDER=openai.
type OpenAILLM struct {
	client    *openai.Client
	modelName string
}

func NewOpenAILLM(apiKey, modelName string) *OpenAILLM {
	if modelName == "" {
		modelName = openai.GPT4oMini
	}
	return &OpenAILLM{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}
}

func (o *OpenAILLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.modelName,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[len(resp.Choices)-1].Message.Content, nil
}

var _ core.LLMProvider = (*OpenAILLM)(nil)
