package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"sop-platform/logger"
)

const (
	FallbackDescription = "A house favourite, freshly prepared to order."
	FallbackAnswer      = "The assistant is not available right now, please try again later."
)

type AssistantServiceInterface interface {
	SuggestDescription(ctx context.Context, dishName string) string
	Ask(ctx context.Context, question string) string
}

// AssistantService wraps the text-generation collaborator. It never fails: an
// unset or failing client yields a fixed fallback text.
type AssistantService struct {
	client Assistant
}

func NewAssistantService(client Assistant) *AssistantService {
	return &AssistantService{client: client}
}

func (s *AssistantService) SuggestDescription(ctx context.Context, dishName string) string {
	prompt := "Write a short, appetizing menu description for the dish \"" + strings.TrimSpace(dishName) + "\"."
	return s.complete(ctx, prompt, FallbackDescription)
}

func (s *AssistantService) Ask(ctx context.Context, question string) string {
	return s.complete(ctx, strings.TrimSpace(question), FallbackAnswer)
}

func (s *AssistantService) complete(ctx context.Context, prompt, fallback string) string {
	if s.client == nil || prompt == "" {
		return fallback
	}
	text, err := s.client.Complete(ctx, prompt)
	if err != nil {
		logger.FromContext(ctx).Warn("assistant call failed", zap.Error(err))
		return fallback
	}
	if text = strings.TrimSpace(text); text == "" {
		return fallback
	}
	return text
}

var _ AssistantServiceInterface = (*AssistantService)(nil)
