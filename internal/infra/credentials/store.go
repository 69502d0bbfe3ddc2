package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/infra"
	"github.com/mlg1986/mlg-ai-creative-studio-sub000/internal/sqlinline"
)

const (
	ProviderGemini = "gemini"

	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

// Store resolves provider credentials from the provider_settings table. An
// environment-supplied key takes precedence so deployments can bypass the
// database entirely. Lookups are cached because the worker resolves
// credentials once per generation run.
type Store struct {
	sql    infra.SQLExecutor
	envKey string
	cache  *gocache.Cache
}

func NewStore(sql infra.SQLExecutor, envGeminiKey string) *Store {
	return &Store{
		sql:    sql,
		envKey: strings.TrimSpace(envGeminiKey),
		cache:  gocache.New(cacheTTL, cacheCleanup),
	}
}

// GeminiAPIKey returns the configured Gemini key, or an empty string when no
// key is configured anywhere.
func (s *Store) GeminiAPIKey(ctx context.Context) (string, error) {
	if s.envKey != "" {
		return s.envKey, nil
	}
	return s.Token(ctx, ProviderGemini)
}

// Token resolves a provider token from cache or the settings table.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	if cached, ok := s.cache.Get(provider); ok {
		return cached.(string), nil
	}
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProviderToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	token = strings.TrimSpace(token)
	s.cache.Set(provider, token, gocache.DefaultExpiration)
	return token, nil
}

// SetGeminiAPIKey persists the Gemini key into the settings table.
func (s *Store) SetGeminiAPIKey(ctx context.Context, key string) error {
	return s.SetToken(ctx, ProviderGemini, key)
}

// SetToken upserts a provider token and invalidates the cached value.
func (s *Store) SetToken(ctx context.Context, provider, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("credentials: token is required")
	}
	raw, err := json.Marshal(map[string]any{})
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertProviderToken, provider, token, raw); err != nil {
		return err
	}
	s.cache.Delete(provider)
	return nil
}
