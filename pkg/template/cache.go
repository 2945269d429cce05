package template

import (
	"sync"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Cache memoizes compiled templates keyed by the literal SQL string, exactly
// as the caller supplied it (no normalization). An entry is rebuilt when the
// same SQL arrives with a different argument count, which guards against a
// caller reusing one string with varying parameterization. Statements with
// no recognized placeholders are not stored; they rescan on every call.
//
// A Cache is safe for concurrent use. It is owned by the adapter that
// created it unless explicitly injected and shared; entries assume a single
// placeholder convention, so share one only among adapters of the same
// dialect.
type Cache struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewCache returns an empty template cache.
func NewCache() *Cache {
	return &Cache{templates: make(map[string]*Template)}
}

// Get returns the compiled template for sql, compiling and storing it when
// absent or when the cached entry was built for a different argument count.
// ok follows the Compile contract: false means no recognized placeholders.
func (c *Cache) Get(sql string, argCount int, style core.PlaceholderStyle) (*Template, bool) {
	c.mu.RLock()
	tmpl, hit := c.templates[sql]
	c.mu.RUnlock()
	if hit && tmpl.ParamCount == argCount {
		return tmpl, true
	}

	tmpl, ok := Compile(sql, argCount, style)
	if !ok {
		return nil, false
	}

	c.mu.Lock()
	c.templates[sql] = tmpl
	c.mu.Unlock()
	return tmpl, true
}

// Len reports the number of cached templates.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

// Clear drops every cached template. Called from adapter dispose.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.templates = make(map[string]*Template)
}
