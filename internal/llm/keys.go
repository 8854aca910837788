package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// DefaultKeyName is the ai_key row consulted when no key is configured.
const DefaultKeyName = "openrouter"

// KeyProvider supplies the bearer key for completion and transcription calls.
type KeyProvider interface {
	APIKey(ctx context.Context) (string, error)
}

// KeyLookup reads a named key from storage.
type KeyLookup interface {
	GetAPIKey(ctx context.Context, keyName string) (string, error)
}

// StaticKey is a key taken from configuration.
type StaticKey string

func (k StaticKey) APIKey(context.Context) (string, error) {
	if strings.TrimSpace(string(k)) == "" {
		return "", ErrNoAPIKey
	}
	return string(k), nil
}

// StoredKeyProvider prefers a configured key and otherwise loads it once from storage.
type StoredKeyProvider struct {
	configured string
	lookup     KeyLookup
	name       string

	mu     sync.Mutex
	cached string
}

func NewStoredKeyProvider(configured string, lookup KeyLookup, name string) *StoredKeyProvider {
	if name == "" {
		name = DefaultKeyName
	}
	return &StoredKeyProvider{configured: strings.TrimSpace(configured), lookup: lookup, name: name}
}

func (p *StoredKeyProvider) APIKey(ctx context.Context) (string, error) {
	if p.configured != "" {
		return p.configured, nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cached != "" {
		return p.cached, nil
	}
	if p.lookup == nil {
		return "", ErrNoAPIKey
	}

	key, err := p.lookup.GetAPIKey(ctx, p.name)
	if err != nil {
		slog.Error("Failed to load stored api key", "key_name", p.name, "error", err)
		return "", fmt.Errorf("%w: %v", ErrNoAPIKey, err)
	}
	if key = strings.TrimSpace(key); key == "" {
		return "", ErrNoAPIKey
	}
	p.cached = key
	return key, nil
}
