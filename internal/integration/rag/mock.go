package rag

import (
	"context"
	"fmt"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector answers without calling any service.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) RetrieveAndAnswer(ctx context.Context, question string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] answering question", zap.Int("question_length", len(question)))
	return fmt.Sprintf("Respuesta de prueba para: %s", question), nil
}

func (m *MockConnector) Ping(ctx context.Context) error {
	return nil
}
