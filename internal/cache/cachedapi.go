// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/citegraph/pkg/types"
)

// Upstream is the uncached paper API. *fetch.Client satisfies it.
type Upstream interface {
	Search(ctx context.Context, query string, limit int) ([]types.Paper, error)
	CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
	ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error)
}

// CachedAPI memoizes an Upstream through a Cache. Keys combine the
// operation, the query or paper ID, and the limit, so the same paper
// fetched with different limits occupies separate entries.
type CachedAPI struct {
	upstream Upstream
	cache    *Cache
}

// NewCachedAPI wraps upstream with c.
func NewCachedAPI(upstream Upstream, c *Cache) *CachedAPI {
	return &CachedAPI{upstream: upstream, cache: c}
}

// Key builds the request signature for one fetch operation.
func Key(op, arg string, limit int) string {
	return fmt.Sprintf("%s:%s:%d", op, arg, limit)
}

// Search returns papers matching query, served from cache when possible.
func (a *CachedAPI) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	return a.through(ctx, Key("search", query, limit), func(ctx context.Context) ([]types.Paper, error) {
		return a.upstream.Search(ctx, query, limit)
	})
}

// CitationsOf returns papers citing paperID, served from cache when possible.
func (a *CachedAPI) CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	return a.through(ctx, Key("citations", paperID, limit), func(ctx context.Context) ([]types.Paper, error) {
		return a.upstream.CitationsOf(ctx, paperID, limit)
	})
}

// ReferencesOf returns papers paperID cites, served from cache when possible.
func (a *CachedAPI) ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	return a.through(ctx, Key("references", paperID, limit), func(ctx context.Context) ([]types.Paper, error) {
		return a.upstream.ReferencesOf(ctx, paperID, limit)
	})
}

func (a *CachedAPI) through(ctx context.Context, key string, fetch func(context.Context) ([]types.Paper, error)) ([]types.Paper, error) {
	raw, err := a.cache.GetOrFetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		papers, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(papers)
	})
	if err != nil {
		return nil, err
	}

	var papers []types.Paper
	if err := json.Unmarshal(raw, &papers); err != nil {
		return nil, fmt.Errorf("decoding cached entry %s: %w", key, err)
	}
	return papers, nil
}
