package cronexpr

import "sync"

// maxCacheSize bounds the parse cache so a process that sees many distinct
// (and possibly malicious or generated) cron strings doesn't grow it without
// bound.
const maxCacheSize = 1000

// cache is a small thread-safe LRU cache of parsed expressions, keyed by the
// raw expression string. Re-parsing the same cron line on every CronJob
// reschedule would otherwise redo the same field-splitting and bitmask work
// forever.
type cache struct {
	mu          sync.Mutex
	entries     map[string]*Expr
	accessOrder []string
}

var defaultCache = &cache{entries: make(map[string]*Expr)}

// ParseCached parses expr, returning a cached *Expr if this exact string was
// parsed before.
func ParseCached(expr string) (*Expr, error) {
	return defaultCache.parse(expr)
}

func (c *cache) parse(expr string) (*Expr, error) {
	c.mu.Lock()
	if e, ok := c.entries[expr]; ok {
		c.touch(expr)
		c.mu.Unlock()
		return e, nil
	}
	c.mu.Unlock()

	e, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[expr]; !ok {
		if len(c.entries) >= maxCacheSize {
			oldest := c.accessOrder[0]
			c.accessOrder = c.accessOrder[1:]
			delete(c.entries, oldest)
		}
		c.entries[expr] = e
		c.accessOrder = append(c.accessOrder, expr)
	}
	return e, nil
}

// touch moves expr to the end of the access order. Call with c.mu held.
func (c *cache) touch(expr string) {
	for i, s := range c.accessOrder {
		if s == expr {
			c.accessOrder = append(c.accessOrder[:i], c.accessOrder[i+1:]...)
			break
		}
	}
	c.accessOrder = append(c.accessOrder, expr)
}
