// Package redistest provides an in-memory command surface for redis-backed tests.
package redistest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Mock implements redis.Cmdable's subset used by pkg/redis.
type Mock struct {
	mu   sync.Mutex
	data map[string]string

	// Err, when set, fails every command.
	Err error
}

func NewMock() *Mock {
	return &Mock{data: make(map[string]string)}
}

func (m *Mock) Ping(context.Context) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (m *Mock) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if m.Err != nil {
		return redis.NewStatusResult("", m.Err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	default:
		m.data[key] = fmt.Sprint(v)
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *Mock) Get(_ context.Context, key string) *redis.StringCmd {
	if m.Err != nil {
		return redis.NewStringResult("", m.Err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *Mock) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if m.Err != nil {
		return redis.NewIntResult(0, m.Err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

// Keys returns a snapshot of the stored keys.
func (m *Mock) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// ErrUnavailable is a convenience failure for tests.
var ErrUnavailable = errors.New("redis unavailable")
