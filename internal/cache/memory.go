package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

const cleanupInterval = 5 * time.Minute

type memoryItem struct {
	value      []byte
	expiration int64
}

// Memory es un caché en proceso con expiración por item.
type Memory struct {
	items map[string]memoryItem
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

// NewMemory inicializa el caché y arranca la limpieza periódica de expirados
func NewMemory(defaultTTL time.Duration) *Memory {
	m := &Memory{
		items: make(map[string]memoryItem),
		ttl:   defaultTTL,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	go m.cleanupExpired(cleanupInterval)
	return m
}

// Set serializa y guarda un valor
func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = m.ttl
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{
		value:      data,
		expiration: m.now().Add(ttl).UnixNano(),
	}
	return nil
}

// Get obtiene y deserializa un valor si no expiró
func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	item, found := m.items[key]
	m.mu.RUnlock()

	if !found || m.now().UnixNano() > item.expiration {
		return false, nil
	}

	if err := json.Unmarshal(item.value, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.items, key)
	}
	return nil
}

// DeleteByPrefix elimina todas las claves que empiecen con un prefijo
func (m *Memory) DeleteByPrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

// Size retorna el número de items en caché, incluidos los expirados aún no limpiados
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.purge()
		}
	}
}

func (m *Memory) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UnixNano()
	for key, item := range m.items {
		if now > item.expiration {
			delete(m.items, key)
		}
	}
}
