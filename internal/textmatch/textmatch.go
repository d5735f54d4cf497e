// Package textmatch provides the keyword matching primitives shared by the
// rules and scoring engines. Word-boundary matches go through a shared cache
// of compiled patterns so the same keyword is compiled once, not once per
// posting. Access is read-mostly: after the first few postings every lookup
// is a cache hit under RLock.
package textmatch

import (
	"regexp"
	"strings"
	"sync"
)

// Cache memoizes compiled word-boundary patterns keyed by the literal
// keyword. Safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	patterns map[string]*regexp.Regexp
}

func NewCache() *Cache {
	return &Cache{patterns: make(map[string]*regexp.Regexp)}
}

// ContainsWord reports whether text contains word bounded by non-word
// characters, so "java" does not match inside "javascript". Matching is
// case-insensitive. Blank words never match.
func (c *Cache) ContainsWord(text, word string) bool {
	if text == "" || strings.TrimSpace(word) == "" {
		return false
	}
	return c.pattern(word).MatchString(text)
}

func (c *Cache) pattern(word string) *regexp.Regexp {
	key := strings.ToLower(word)

	c.mu.RLock()
	re, ok := c.patterns[key]
	c.mu.RUnlock()
	if ok {
		return re
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check: another goroutine may have compiled it while we waited.
	if re, ok := c.patterns[key]; ok {
		return re
	}
	re = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(key) + `\b`)
	c.patterns[key] = re
	return re
}

// ContainsPhrase reports whether text contains phrase as a plain
// case-insensitive substring.
func ContainsPhrase(text, phrase string) bool {
	if text == "" || phrase == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(phrase))
}
