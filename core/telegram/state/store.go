package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/m3rciful/trustbot/core/logger"
)

const (
	DefaultTTL      = 30 * time.Minute
	DefaultCapacity = 10000
)

// Options bounds a Store. Zero values fall back to the defaults.
type Options struct {
	TTL      time.Duration
	Capacity int
}

// Store holds one session value per key. Entries expire TTL after their
// last write and the least recently used entry is evicted at capacity.
type Store[S any] struct {
	lru *expirable.LRU[Key, S]
}

// NewStore creates an empty session store.
func NewStore[S any](opts Options) *Store[S] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	onEvict := func(k Key, _ S) {
		logger.Debug(context.Background(), logger.CompSession, "session.dropped",
			slog.Int64("chat_id", k.ChatID),
			slog.Int64("user_id", k.UserID),
		)
	}
	return &Store[S]{lru: expirable.NewLRU[Key, S](opts.Capacity, onEvict, opts.TTL)}
}

// Get returns the session for k, or the zero value when absent or expired.
func (s *Store[S]) Get(k Key) (S, bool) {
	return s.lru.Get(k)
}

// Put stores v for k and restarts its TTL.
func (s *Store[S]) Put(k Key, v S) {
	s.lru.Add(k, v)
}

// Delete drops the session for k.
func (s *Store[S]) Delete(k Key) {
	s.lru.Remove(k)
}

// Len returns the number of live sessions.
func (s *Store[S]) Len() int {
	return s.lru.Len()
}
