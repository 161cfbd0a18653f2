package stats

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of memoised query results.
const DefaultCacheSize = 65536

// Cache memoises Compute results. A Cache is meant to live for one
// optimisation or report request; its keys still carry the character identity
// so a shared Cache never leaks gated stats across characters.
type Cache struct {
	entries *lru.Cache[string, map[string]float64]
}

// NewCache creates a Cache holding at most size results; size <= 0 uses
// DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, map[string]float64](size)
	if err != nil {
		return nil, fmt.Errorf("stats: NewCache: %w", err)
	}
	return &Cache{entries: c}, nil
}

// Compute returns Compute(src, q), memoised. A nil Cache computes directly.
//
// Postcondition: the returned map is owned by the caller.
func (c *Cache) Compute(src Source, q Query) (map[string]float64, error) {
	if c == nil {
		return Compute(src, q)
	}
	key := cacheKey(src, q)
	if v, ok := c.entries.Get(key); ok {
		return clone(v), nil
	}
	v, err := Compute(src, q)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, v)
	return clone(v), nil
}

// Len returns the number of memoised results.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func cacheKey(src Source, q Query) string {
	var b strings.Builder
	b.WriteString(src.SourceID())
	b.WriteByte('|')
	if q.Character != nil {
		b.WriteString(q.Character.Identity())
	}
	b.WriteByte('|')
	b.WriteString(strings.ToLower(q.Skill))
	b.WriteByte('|')
	if q.Location != nil {
		b.WriteString(q.Location.ID())
	}
	b.WriteByte('|')
	b.WriteString(strings.ToLower(q.Activity))
	b.WriteByte('|')
	sets := make([]string, 0, len(q.SetPieceCounts))
	for k := range q.SetPieceCounts {
		sets = append(sets, k)
	}
	sort.Strings(sets)
	for _, k := range sets {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(strconv.Itoa(q.SetPieceCounts[k]))
		b.WriteByte(',')
	}
	return b.String()
}

func clone(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
