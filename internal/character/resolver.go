package character

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fantasy-ai/backend/internal/catalog"
	"fantasy-ai/backend/internal/model"
	"fantasy-ai/backend/internal/repository"
)

const DefaultCacheTTL = 30 * time.Minute

// lookupTimeout bounds a shared fill, which no longer follows any one caller's context.
const lookupTimeout = 10 * time.Second

type cacheEntry struct {
	value     *model.Character
	expiresAt time.Time
}

// Resolver looks characters up by id: stored rows first, then the built-in catalog.
// Results are cached per id and concurrent misses for the same id share one lookup.
type Resolver struct {
	source  repository.CharacterSource
	catalog *catalog.Catalog
	ttl     time.Duration
	now     func() time.Time

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

// NewResolver creates a Resolver. source may be nil, in which case only the catalog is consulted.
func NewResolver(source repository.CharacterSource, cat *catalog.Catalog, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Resolver{
		source:  source,
		catalog: cat,
		ttl:     ttl,
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
	}
}

// Resolve returns the character with the given id, or nil when neither the store nor
// the catalog knows it. Store failures are logged and treated as a miss.
func (r *Resolver) Resolve(ctx context.Context, id string) (*model.Character, error) {
	key := strings.TrimSpace(id)
	if key == "" {
		return nil, nil
	}

	if ch, ok := r.cached(key); ok {
		return clone(ch), nil
	}

	v, err, shared := r.group.Do(key, func() (interface{}, error) {
		// Other callers wait on this fill, so it must outlive the caller that started it.
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lookupTimeout)
		defer cancel()
		ch := r.lookup(fillCtx, key)
		if ch != nil {
			r.store(key, ch)
		}
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("Character lookup shared with in-flight request", "character_id", key)
	}

	ch, _ := v.(*model.Character)
	return clone(ch), nil
}

// ResolveMany resolves each id, skipping unknown ones.
func (r *Resolver) ResolveMany(ctx context.Context, ids []string) ([]*model.Character, error) {
	out := make([]*model.Character, 0, len(ids))
	for _, id := range ids {
		ch, err := r.Resolve(ctx, id)
		if err != nil {
			return nil, err
		}
		if ch != nil {
			out = append(out, ch)
		}
	}
	return out, nil
}

// ByCategory lists the characters of a category: stored characters of the category's
// type when there are any, otherwise the catalog defaults.
func (r *Resolver) ByCategory(ctx context.Context, category string) ([]*model.Character, error) {
	characterType, ok := r.catalog.TypeForCategory(category)
	if !ok || r.source == nil {
		return r.catalog.CharactersByCategory(category), nil
	}

	stored, err := r.source.ListCharactersByType(ctx, characterType)
	if err != nil {
		slog.Warn("Failed to list characters by type, using catalog", "category", category, "type", characterType, "error", err)
		return r.catalog.CharactersByCategory(category), nil
	}
	if len(stored) == 0 {
		return r.catalog.CharactersByCategory(category), nil
	}

	out := make([]*model.Character, 0, len(stored))
	for _, ch := range stored {
		normalized := r.catalog.Normalize(*ch)
		out = append(out, &normalized)
	}
	return out, nil
}

func (r *Resolver) lookup(ctx context.Context, key string) *model.Character {
	if numericID, err := strconv.ParseInt(key, 10, 64); err == nil && r.source != nil {
		stored, err := r.source.GetCharacter(ctx, numericID)
		switch {
		case err == nil && stored != nil:
			normalized := r.catalog.Normalize(*stored)
			normalized.Source = model.SourceRemote
			return &normalized
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			slog.Warn("Character lookup failed, falling back to catalog", "character_id", key, "error", err)
		}
	}

	if ch := r.catalog.Character(key); ch != nil {
		return ch
	}
	slog.Info("Character not found", "character_id", key)
	return nil
}

func (r *Resolver) cached(key string) (*model.Character, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[key]
	if !ok || r.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

func (r *Resolver) store(key string, ch *model.Character) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[key] = cacheEntry{value: ch, expiresAt: r.now().Add(r.ttl)}
}

func clone(ch *model.Character) *model.Character {
	if ch == nil {
		return nil
	}
	c := *ch
	c.ExampleQuestions = slices.Clone(ch.ExampleQuestions)
	c.SuggestedQuestions = slices.Clone(ch.SuggestedQuestions)
	c.SubTasks = slices.Clone(ch.SubTasks)
	c.Tags = slices.Clone(ch.Tags)
	return &c
}
