package services

import (
	"sync"
	"time"
)

type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// RefreshFunc obtains a fresh token for a user from the external provider.
type RefreshFunc func(userID uint) (Token, error)

// TokenCache is a concurrency-safe map from user id to a cached access
// token. Entries are replaced wholesale on refresh; there is no background
// eviction and no cross-key ordering.
type TokenCache struct {
	mu      sync.Mutex
	tokens  map[uint]Token
	refresh RefreshFunc
	now     func() time.Time
}

func NewTokenCache(refresh RefreshFunc) *TokenCache {
	return &TokenCache{
		tokens:  make(map[uint]Token),
		refresh: refresh,
		now:     time.Now,
	}
}

// Get returns the cached token for the user, refreshing on miss or expiry.
// The refresh call runs outside the lock so one slow provider call does not
// stall lookups for other users; the store itself is an atomic replace.
func (c *TokenCache) Get(userID uint) (Token, error) {
	c.mu.Lock()
	token, ok := c.tokens[userID]
	c.mu.Unlock()

	if ok && c.now().Before(token.ExpiresAt) {
		return token, nil
	}

	fresh, err := c.refresh(userID)

	if err != nil {
		return Token{}, err
	}

	c.mu.Lock()
	c.tokens[userID] = fresh
	c.mu.Unlock()

	return fresh, nil
}

// Invalidate drops the cached token for a user, forcing the next Get to
// refresh.
func (c *TokenCache) Invalidate(userID uint) {
	c.mu.Lock()
	delete(c.tokens, userID)
	c.mu.Unlock()
}
