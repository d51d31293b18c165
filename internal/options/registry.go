// Package options caches the admin-managed form vocabularies. The original
// behavior fetched them live on every form render; the registry loads each
// vocabulary once and reloads only on an explicit refresh.
package options

import (
	"context"
	"sync"

	"github.com/example/boutique/internal/catalog"
)

var vocabularies = []catalog.OptionVocabulary{
	catalog.OptionSizes,
	catalog.OptionStores,
	catalog.OptionClassifications,
	catalog.OptionGenders,
}

// Reader is the store surface the registry reads from.
type Reader interface {
	Options(ctx context.Context, v catalog.OptionVocabulary) ([]string, error)
}

// Registry is a lazily loaded, explicitly refreshable vocabulary cache.
type Registry struct {
	mu     sync.RWMutex
	reader Reader
	cache  map[catalog.OptionVocabulary][]string
}

// NewRegistry constructs an empty Registry over reader.
func NewRegistry(reader Reader) *Registry {
	return &Registry{reader: reader}
}

// Snapshot returns all vocabularies, loading them on first use.
func (r *Registry) Snapshot(ctx context.Context) (map[string][]string, error) {
	r.mu.RLock()
	cache := r.cache
	r.mu.RUnlock()

	if cache == nil {
		if err := r.Refresh(ctx); err != nil {
			return nil, err
		}
		r.mu.RLock()
		cache = r.cache
		r.mu.RUnlock()
	}

	out := make(map[string][]string, len(cache))
	for v, names := range cache {
		out[string(v)] = append([]string(nil), names...)
	}
	return out, nil
}

// Refresh reloads every vocabulary from the store. The previous cache stays
// in place when any read fails.
func (r *Registry) Refresh(ctx context.Context) error {
	fresh := make(map[catalog.OptionVocabulary][]string, len(vocabularies))
	for _, v := range vocabularies {
		names, err := r.reader.Options(ctx, v)
		if err != nil {
			return err
		}
		fresh[v] = names
	}

	r.mu.Lock()
	r.cache = fresh
	r.mu.Unlock()
	return nil
}
