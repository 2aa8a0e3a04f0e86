// Package querycache guarda respuestas de la API de SaludHogar por clave de
// consulta y soporta mutaciones optimistas con rollback.
package querycache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store guarda valores serializados en JSON. Get devuelve false si la clave
// no existe o expiró.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix borra todas las claves que empiezan con prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

type memEntry struct {
	data    []byte
	expires time.Time // zero = sin expiración
}

// MemoryStore es el store por defecto (un solo proceso).
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]memEntry
	now  func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID: make(map[string]memEntry),
		now:  time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.byID[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.mu.Lock()
		delete(s.byID, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	out := make([]byte, len(e.data))
	copy(out, e.data)
	return out, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memEntry{data: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.byID[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.byID, k)
	}
	return nil
}

func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.byID {
		if strings.HasPrefix(k, prefix) {
			delete(s.byID, k)
		}
	}
	return nil
}

// Keys lista las claves vivas; solo para diagnóstico y tests.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byID))
	for k := range s.byID {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("querycache: marshal: %w", err)
	}
	return b, nil
}
