package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/futig/rag-gateway/internal/config"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	values map[string]string
	err    error
	calls  []string
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls = append(f.calls, *in.Name)
	if f.err != nil {
		return nil, f.err
	}
	if in.WithDecryption == nil || !*in.WithDecryption {
		return nil, errors.New("decryption not requested")
	}
	v, ok := f.values[*in.Name]
	if !ok {
		return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name}}, nil
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: &v}}, nil
}

func TestGetParameter(t *testing.T) {
	c, err := New(&fakeAPI{values: map[string]string{"/app/key": "s3cr3t"}}, "")
	require.NoError(t, err)

	v, err := c.GetParameter(context.Background(), " /app/key ")
	require.NoError(t, err)
	require.Equal(t, "s3cr3t", v)

	_, err = c.GetParameter(context.Background(), "/app/missing")
	require.ErrorContains(t, err, "missing value")

	_, err = c.GetParameter(context.Background(), "")
	require.Error(t, err)
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "")
	require.Error(t, err)
}

func TestOverlay_ReplacesNamedSecretsOnly(t *testing.T) {
	api := &fakeAPI{values: map[string]string{
		"/rag/generator": "gen-key",
		"/rag/admin":     "$2a$10$hash",
	}}
	c, err := New(api, "")
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.SecretsCfg = config.SecretsConfig{
		Timeout:           time.Second,
		GeneratorAPIKey:   "/rag/generator",
		AdminPasswordHash: "/rag/admin",
	}
	cfg.AzureSpeech.Key = "from-env"

	require.NoError(t, Overlay(context.Background(), c, cfg, zap.NewNop()))
	require.Equal(t, "gen-key", cfg.GeneratorCfg.APIKey)
	require.Equal(t, "$2a$10$hash", cfg.AdminCfg.PasswordHash)
	require.Equal(t, "from-env", cfg.AzureSpeech.Key)
	require.Len(t, api.calls, 2)
}

func TestPing(t *testing.T) {
	api := &fakeAPI{err: errors.New("access denied")}
	c, err := New(api, "/rag/health")
	require.NoError(t, err)
	require.ErrorContains(t, c.Ping(context.Background()), "access denied")

	c, err = New(api, "")
	require.NoError(t, err)
	require.NoError(t, c.Ping(context.Background()))
}
