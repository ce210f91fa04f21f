package kvstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Memory keeps entries in a map with an optional byte quota counted over
// keys and values, like browser local storage.
type Memory struct {
	mu    sync.RWMutex
	data  map[string]string
	used  int
	quota int
}

// NewMemory returns a store limited to quota bytes, unlimited when quota
// is zero or negative.
func NewMemory(quota int) *Memory {
	return &Memory{data: map[string]string{}, quota: quota}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.used + len(value)
	if old, ok := m.data[key]; ok {
		next -= len(old)
	} else {
		next += len(key)
	}
	if m.quota > 0 && next > m.quota {
		return fmt.Errorf("%w: writing %q needs %d of %d bytes", ErrQuotaExceeded, key, next, m.quota)
	}
	m.data[key] = value
	m.used = next
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.data[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.data, key)
	}
	return nil
}

// Used reports the bytes currently held.
func (m *Memory) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

// Keys lists stored keys with the given prefix in sorted order.
func (m *Memory) Keys(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
