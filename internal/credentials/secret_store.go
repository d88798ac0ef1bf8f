package credentials

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/seacreatures/internal/storage"
	"gopkg.in/yaml.v3"
)

type objectReader interface {
	ReadObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// SecretStoreProvider serves secrets from a flat YAML document, e.g.
//
//	GOOGLE_API_KEY: "..."
//	STABILITY_API_KEY: "..."
//
// The document is read once, from a local path or an s3://bucket/key object.
type SecretStoreProvider struct {
	source  string
	secrets map[string]string
}

// NewSecretStoreProvider loads the document at source. reader is required for s3:// sources.
func NewSecretStoreProvider(ctx context.Context, source string, reader objectReader) (*SecretStoreProvider, error) {
	var data []byte
	if storage.IsS3URL(source) {
		if reader == nil {
			return nil, fmt.Errorf("secret store %s: no object reader configured", source)
		}
		bucket, key, err := storage.ParseS3URL(source)
		if err != nil {
			return nil, err
		}
		data, err = reader.ReadObject(ctx, bucket, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret store: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read secret store: %w", err)
		}
	}

	secrets, err := parseSecrets(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secret store %s: %w", source, err)
	}

	log.Info().
		Str("source", source).
		Int("entries", len(secrets)).
		Msg("Secret store loaded")

	return &SecretStoreProvider{source: source, secrets: secrets}, nil
}

func (p *SecretStoreProvider) Name() string { return "secret_store" }

func (p *SecretStoreProvider) Lookup(_ context.Context, name string) (string, bool) {
	v := strings.TrimSpace(p.secrets[name])
	return v, v != ""
}

// parseSecrets keeps top-level scalar entries; nested sections are ignored.
func parseSecrets(data []byte) (map[string]string, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	secrets := make(map[string]string, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case string:
			secrets[k] = val
		case int, int64, float64, bool:
			secrets[k] = fmt.Sprint(val)
		}
	}
	return secrets, nil
}
