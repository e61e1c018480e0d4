package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"

	contractx "github.com/tanpawarit/Marketa-Multi-Agent-Market-Intelligence/agent/contract"
)

// Service executes completion requests against the OpenAI chat API.
type Service struct {
	client *openaisdk.Client
}

var _ contractx.Completer = (*Service)(nil)

func New(client *openaisdk.Client) (*Service, error) {
	if client == nil {
		return nil, errors.New("openai client is required")
	}
	return &Service{client: client}, nil
}

func (s *Service) Complete(ctx context.Context, req contractx.CompletionRequest) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("%w: completion request has no messages", contractx.ErrValidation)
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		return "", fmt.Errorf("%w: completion request has no model", contractx.ErrValidation)
	}

	messages := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case contractx.RoleSystem:
			messages = append(messages, openaisdk.SystemMessage(m.Content))
		case contractx.RoleAssistant:
			messages = append(messages, openaisdk.AssistantMessage(m.Content))
		default:
			messages = append(messages, openaisdk.UserMessage(m.Content))
		}
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(model),
		Messages:    messages,
		Temperature: openaisdk.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openaisdk.Int(int64(req.MaxTokens))
	}

	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response carried no choices", contractx.ErrModelInvoke)
	}
	return resp.Choices[0].Message.Content, nil
}
