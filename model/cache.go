package model

import "sync"

// A Cache memoizes values derived from model objects for the lifetime
// of one analysis run. Entries are keyed by the object's identity and
// live until evicted or until the cache itself is dropped. It is safe
// for concurrent use.
type Cache[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

// Get returns the cached value for k, creating it with create on first
// use. create runs without the lock held; if two callers race, the
// first stored value wins.
func (c *Cache[K, V]) Get(k K, create func(K) V) V {
	c.mu.Lock()
	v, ok := c.m[k]
	c.mu.Unlock()
	if ok {
		return v
	}
	nv := create(k)
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.m[k]; ok {
		return v
	}
	if c.m == nil {
		c.m = make(map[K]V)
	}
	c.m[k] = nv
	return nv
}

// Evict drops the entry for k.
func (c *Cache[K, V]) Evict(k K) {
	c.mu.Lock()
	delete(c.m, k)
	c.mu.Unlock()
}

func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// An Index answers structural queries (parent links) about function
// bodies. Parent maps are built lazily per function and cached.
type Index struct {
	parents Cache[*Function, map[Expression]Expression]
}

func NewIndex() *Index { return new(Index) }

// Parent returns the structural parent of e inside fn, or nil if e is a
// top-level expression of the body (or not part of fn at all).
func (ix *Index) Parent(fn *Function, e Expression) Expression {
	return ix.parents.Get(fn, buildParents)[e]
}

func buildParents(fn *Function) map[Expression]Expression {
	m := make(map[Expression]Expression)
	var walk func(parent, e Expression)
	walk = func(parent, e Expression) {
		if e == nil {
			return
		}
		if parent != nil {
			m[e] = parent
		}
		for _, c := range e.Children() {
			walk(e, c)
		}
	}
	for _, e := range fn.Body {
		walk(nil, e)
	}
	return m
}
