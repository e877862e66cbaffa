package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// NewInMemory returns a Client backed by a process-local map. It speaks the
// same key layout as a real server and is meant for tests of dependent packages.
func NewInMemory() *Client {
	return &Client{store: newMemoryCmdable()}
}

type memoryCmdable struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryCmdable() *memoryCmdable {
	return &memoryCmdable{data: make(map[string]string)}
}

func (m *memoryCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *memoryCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryCmdable) MSet(_ context.Context, values ...any) *redis.StatusCmd {
	if len(values)%2 != 0 {
		return redis.NewStatusResult("", fmt.Errorf("ERR wrong number of arguments for 'mset' command"))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < len(values); i += 2 {
		m.data[fmt.Sprint(values[i])] = fmt.Sprint(values[i+1])
	}
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
