// Package drafts keeps short-lived autosave copies of open documents in Redis.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-editor/internal/logger"
	"github.com/jonathan/resume-editor/internal/types"
)

// DefaultTTL is how long a draft survives without being saved again.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "draft:"

// Store saves drafts under a per-document key with an expiry.
type Store struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// Connect dials addr and verifies the connection.
func Connect(ctx context.Context, addr string, ttl time.Duration, log *logger.Logger) (*Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, ttl, log), nil
}

// New wraps an existing client. A non-positive ttl selects DefaultTTL.
func New(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{rdb: rdb, ttl: ttl, log: log.With("service", "DraftStore")}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// SaveDocument writes doc as the draft for id, refreshing its expiry.
func (s *Store) SaveDocument(ctx context.Context, id uuid.UUID, doc *types.Document) error {
	if doc == nil {
		return fmt.Errorf("cannot save nil draft")
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := s.rdb.Set(ctx, Key(id), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", id, err)
	}
	s.log.Debug("draft saved", "document_id", id.String(), "bytes", len(raw))
	return nil
}

// Load returns the raw draft for id, or nil when there is none.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (json.RawMessage, error) {
	raw, err := s.rdb.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return json.RawMessage(raw), nil
}

// Discard removes the draft for id.
func (s *Store) Discard(ctx context.Context, id uuid.UUID) error {
	if err := s.rdb.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to discard draft %s: %w", id, err)
	}
	return nil
}

// Key returns the Redis key holding the draft for id.
func Key(id uuid.UUID) string {
	return keyPrefix + id.String()
}
