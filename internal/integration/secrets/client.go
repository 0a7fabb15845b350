package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/futig/rag-gateway/internal/config"
	"go.uber.org/zap"
)

// ssmAPI is satisfied by *ssm.Client.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Client reads decrypted values from AWS SSM Parameter Store.
type Client struct {
	api         ssmAPI
	healthParam string
}

func NewFromConfig(ctx context.Context, cfg config.SecretsConfig) (*Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("secrets: load aws config: %w", err)
	}
	return New(ssm.NewFromConfig(awsCfg), cfg.HealthCheckParam)
}

func New(api ssmAPI, healthParam string) (*Client, error) {
	if api == nil {
		return nil, errors.New("secrets: api must not be nil")
	}
	return &Client{api: api, healthParam: healthParam}, nil
}

func (c *Client) GetParameter(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("secrets: name is required")
	}

	out, err := c.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("secrets: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("secrets: parameter %q missing value", name)
	}
	return *out.Parameter.Value, nil
}

// Ping reads the health check parameter. With none configured it only
// confirms the client exists.
func (c *Client) Ping(ctx context.Context) error {
	if c.healthParam == "" {
		return nil
	}
	_, err := c.GetParameter(ctx, c.healthParam)
	return err
}

// Overlay replaces credentials in cfg with the values of the configured
// parameters. Parameters left unnamed keep the value from the environment.
func Overlay(ctx context.Context, c *Client, cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.SecretsCfg.Timeout)
	defer cancel()

	targets := []struct {
		param string
		dst   *string
	}{
		{cfg.SecretsCfg.AdminPasswordHash, &cfg.AdminCfg.PasswordHash},
		{cfg.SecretsCfg.GeneratorAPIKey, &cfg.GeneratorCfg.APIKey},
		{cfg.SecretsCfg.EmbeddingToken, &cfg.EmbeddingCfg.Token},
		{cfg.SecretsCfg.AzureSpeechKey, &cfg.AzureSpeech.Key},
		{cfg.SecretsCfg.ElevenLabsAPIKey, &cfg.ElevenLabsCfg.APIKey},
		{cfg.SecretsCfg.BlobSecretKey, &cfg.BlobCfg.SecretKey},
	}

	loaded := 0
	for _, t := range targets {
		if t.param == "" {
			continue
		}
		value, err := c.GetParameter(ctx, t.param)
		if err != nil {
			return err
		}
		*t.dst = value
		loaded++
	}

	logger.Info("secrets loaded from parameter store", zap.Int("count", loaded))
	return nil
}
