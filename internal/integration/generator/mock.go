package generator

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockGenerator reports what it was given instead of calling a model.
type MockGenerator struct {
	logger *zap.Logger
}

func NewMockGenerator(logger *zap.Logger) *MockGenerator {
	return &MockGenerator{logger: logger}
}

func (m *MockGenerator) Generate(ctx context.Context, vars map[string]any) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer", zap.Int("var_count", len(vars)))

	grounding, _ := vars["context"].(string)
	if question, _ := vars["question"].(string); question == "" {
		return "[mock] sin pregunta", nil
	}
	return fmt.Sprintf("[mock] %d caracteres de contexto recibidos", len(grounding)), nil
}
