package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/rag-gateway/internal/config"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Generator renders a chat template and runs the result through a chat
// model as one compiled chain.
type Generator struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	logger *zap.Logger
}

// NewArkGenerator builds a generator backed by an Ark (OpenAI-compatible) chat model.
func NewArkGenerator(ctx context.Context, cfg config.GeneratorConfig, template prompt.ChatTemplate, logger *zap.Logger) (*Generator, error) {
	if cfg.Model == "" || cfg.APIKey == "" {
		return nil, errors.New("generator model and api key are required")
	}

	temperature := cfg.Temperature
	maxTokens := cfg.MaxTokens

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL:     cfg.BaseURL,
		Region:      cfg.Region,
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	return NewGenerator(ctx, template, chatModel, logger)
}

// NewGenerator compiles template and chat model into a single chain.
func NewGenerator(ctx context.Context, template prompt.ChatTemplate, chatModel model.BaseChatModel, logger *zap.Logger) (*Generator, error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(template)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile generation chain: %w", err)
	}

	return &Generator{chain: runnable, logger: logger}, nil
}

// Generate returns the completion text for the template rendered with vars.
func (g *Generator) Generate(ctx context.Context, vars map[string]any) (string, error) {
	msg, err := g.chain.Invoke(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("invoke chat model: %w", err)
	}
	if msg == nil {
		return "", errors.New("chat model returned no message")
	}

	ctxzap.Debug(ctx, "completion generated", zap.Int("answer_length", len(msg.Content)))
	return strings.TrimSpace(msg.Content), nil
}
