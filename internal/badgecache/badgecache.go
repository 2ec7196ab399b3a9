// Package badgecache stores rendered identity badges keyed by user id.
// An entry remembers the username it was rendered for so that callers can
// detect a rename and re-render.
package badgecache

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
)

type Entry struct {
	Username string
	PNG      []byte
}

type Memory struct {
	mu      sync.RWMutex
	entries map[int]Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[int]Entry)}
}

// Get returns nil on a miss.
func (m *Memory) Get(_ context.Context, userID int) (*Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[userID]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) Set(_ context.Context, userID int, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = e
	return nil
}

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func key(userID int) string {
	return fmt.Sprintf("badge:%d", userID)
}

func (r *Redis) Get(ctx context.Context, userID int) (*Entry, error) {
	fields, err := r.client.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	png, ok := fields["png"]
	if !ok {
		return nil, nil
	}
	return &Entry{Username: fields["username"], PNG: []byte(png)}, nil
}

func (r *Redis) Set(ctx context.Context, userID int, e Entry) error {
	return r.client.HSet(ctx, key(userID), "username", e.Username, "png", e.PNG).Err()
}
