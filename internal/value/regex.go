package value

import (
	"fmt"
	"regexp"
	"sync"
)

// regexCache compiles and memoizes patterns the first time a Regex Value is
// matched against a string. Spec.md §5 leaves the choice between a
// per-evaluation cache and a shared, lock-guarded cache to the implementer;
// Guard shares one cache process-wide because rule source text (and
// therefore every pattern that will ever be seen) is fixed once a file is
// parsed, so the cache only grows and a read path under RLock is cheap.
type regexCache struct {
	mu   sync.RWMutex
	seen map[string]*regexp.Regexp
}

var sharedRegexCache = &regexCache{seen: make(map[string]*regexp.Regexp)}

func (c *regexCache) compile(pattern string) (*regexp.Regexp, error) {
	c.mu.RLock()
	re, ok := c.seen[pattern]
	c.mu.RUnlock()
	if ok {
		return re, nil
	}

	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return nil, Error{Kind: "InvalidRegex", Message: fmt.Sprintf("%q: %v", pattern, err)}
	}

	c.mu.Lock()
	c.seen[pattern] = compiled
	c.mu.Unlock()

	return compiled, nil
}

// Compiled returns the lazily-compiled, memoized *regexp.Regexp for a Regex
// Value.
func (v Value) Compiled() (*regexp.Regexp, error) {
	if v.Kind != Regex {
		return nil, typeMismatch("Compiled called on non-regex value of kind %s", v.Kind)
	}
	return sharedRegexCache.compile(v.S)
}
