package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/config"
	"github.com/snappy-loop/seacreatures/internal/models"
	"github.com/snappy-loop/seacreatures/internal/storage"
)

// Secret names shared by every provider.
const (
	TextAPIKeyName  = "GOOGLE_API_KEY"
	ImageAPIKeyName = "STABILITY_API_KEY"
)

// Provider looks up a named secret. A missing or blank secret returns ok=false.
type Provider interface {
	Lookup(ctx context.Context, name string) (value string, ok bool)
	Name() string
}

// EnvProvider reads secrets from process environment variables (populated from .env by config.Load).
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Lookup(_ context.Context, name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}

// Select picks the provider for this deployment: SECRETS_SOURCE set means the
// secret store, otherwise environment variables.
func Select(ctx context.Context, cfg *config.Config) (Provider, error) {
	if cfg.SecretsSource == "" {
		return EnvProvider{}, nil
	}

	var reader objectReader
	if storage.IsS3URL(cfg.SecretsSource) {
		client, err := storage.NewClient(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage client: %w", err)
		}
		reader = client
	}
	return NewSecretStoreProvider(ctx, cfg.SecretsSource, reader)
}

// Resolve reads both API keys once. Missing keys are left empty.
func Resolve(ctx context.Context, p Provider) models.Credentials {
	text, _ := p.Lookup(ctx, TextAPIKeyName)
	image, _ := p.Lookup(ctx, ImageAPIKeyName)

	log.Info().
		Str("provider", p.Name()).
		Bool("text_key", text != "").
		Bool("image_key", image != "").
		Msg("Credentials resolved")

	return models.Credentials{TextAPIKey: text, ImageAPIKey: image}
}
