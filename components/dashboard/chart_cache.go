package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

const defaultChartCacheTTL = 5 * time.Minute

// RenderCache holds rendered chart HTML by key.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered charts for a fixed TTL. Purge bumps a generation
// so renders that started before it are returned but not stored.
type ChartCache struct {
	ttl time.Duration
	now func() time.Time

	mu         sync.Mutex
	generation uint64
	charts     map[string]chartEntry
}

type chartEntry struct {
	html      string
	expiresAt time.Time
}

// NewChartCache returns an empty cache. ttl <= 0 turns caching off.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, charts: map[string]chartEntry{}}
}

// GetOrRender serves key from the cache, rendering and storing it on a miss.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	c.mu.Lock()
	entry, hit := c.charts[key]
	now := c.now()
	if hit && now.Before(entry.expiresAt) {
		c.mu.Unlock()
		return entry.html, nil
	}
	if hit {
		delete(c.charts, key)
	}
	generation := c.generation
	c.mu.Unlock()

	html, err := render()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	if c.generation == generation {
		c.charts[key] = chartEntry{html: html, expiresAt: c.now().Add(c.ttl)}
	}
	c.mu.Unlock()
	return html, nil
}

// Purge empties the cache.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.charts = map[string]chartEntry{}
	c.mu.Unlock()
}

// Len reports the number of stored charts, expired ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charts)
}

// stateHash digests a filter selection. Equal selections from different
// sessions hash the same.
func stateHash(state FilterState) string {
	if state.IsDefault() {
		return "all"
	}
	b, err := json.Marshal(state)
	if err != nil {
		return "invalid"
	}
	return digest(string(b))
}

// chartKey digests every input that changes rendered chart HTML.
func chartKey(parts ...string) string {
	return digest(strings.Join(parts, "\x1f"))
}

func digest(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
