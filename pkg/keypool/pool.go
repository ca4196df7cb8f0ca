// Package keypool provides a request-scoped rotating pool of provider
// credentials. Keys are handed out round-robin; keys that fail with a
// permanent auth error are evicted for the remainder of the request.
package keypool

import (
	"errors"
	"math/rand/v2"
	"sync"
)

var (
	// ErrNoKeys indicates the pool was constructed with no credentials.
	ErrNoKeys = errors.New("no API keys configured")

	// ErrExhausted indicates every credential has been evicted.
	ErrExhausted = errors.New("API key pool exhausted")
)

// Pool is a thread-safe rotating credential pool. The zero value is not
// usable; construct with New.
//
// Rotation avoids hammering a single key; the construction-time shuffle
// spreads starting bias across requests. Eviction is permanent for the life
// of the pool: a persistent failure class shrinks the working set instead of
// looping over a dead key.
type Pool struct {
	mu        sync.Mutex
	available []string
	cursor    int
}

// New creates a pool from the given credentials. The input is copied and
// randomly permuted. Returns ErrNoKeys on empty input.
func New(keys []string) (*Pool, error) {
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	shuffled := make([]string, len(keys))
	copy(shuffled, keys)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return &Pool{available: shuffled}, nil
}

// Next returns the credential at the cursor and advances it. Returns
// ErrExhausted when the pool is empty.
func (p *Pool) Next() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.available) == 0 {
		return "", ErrExhausted
	}
	key := p.available[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.available)
	return key, nil
}

// Evict permanently removes the first occurrence of key from the pool.
// Evicting an absent key is a no-op. The cursor is clamped into the new
// range so the next rotation stays valid.
func (p *Pool) Evict(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, k := range p.available {
		if k == key {
			p.available = append(p.available[:i], p.available[i+1:]...)
			break
		}
	}
	if len(p.available) == 0 {
		p.cursor = 0
		return
	}
	if p.cursor >= len(p.available) {
		p.cursor = 0
	}
}

// Count returns the number of credentials currently in the pool.
func (p *Pool) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.available)
}
