package services

import (
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// CompanionClient wraps the hosted LLM completion API.
type CompanionClient struct {
	Chat llms.Model
}

func NewCompanionClient(apiKey, apiEndpoint, model string) (*CompanionClient, error) {
	chat, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(apiEndpoint),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create companion client: %w", err)
	}

	return &CompanionClient{
		Chat: chat,
	}, nil
}
