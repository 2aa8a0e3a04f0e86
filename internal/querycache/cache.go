package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"saludhogar/internal/platform/logger"
	"saludhogar/internal/platform/metrics"
)

const DefaultTTL = time.Minute

// Key identifica una consulta, p.ej. Key{"medications", familyID}.
// Invalidar Key{"medications"} invalida también todas sus sub-claves.
type Key []string

func (k Key) String() string { return strings.Join(k, ":") }

type Options struct {
	TTL     time.Duration
	Prefix  string // default "saludhogar:q:"
	Log     logger.Logger
	Metrics *metrics.Metrics
}

type Cache struct {
	store   Store
	ttl     time.Duration
	prefix  string
	log     logger.Logger
	metrics *metrics.Metrics
	group   singleflight.Group
}

func New(store Store, opts Options) *Cache {
	if store == nil {
		store = NewMemoryStore()
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "saludhogar:q:"
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		store:   store,
		ttl:     ttl,
		prefix:  prefix,
		log:     log.With(map[string]any{"component": "querycache"}),
		metrics: opts.Metrics,
	}
}

func (c *Cache) storeKey(k Key) string { return c.prefix + k.String() }

// Fetch devuelve el valor cacheado o llama a fn y lo guarda. Llamadas
// concurrentes con la misma clave comparten una sola llamada a fn.
// Los errores de la cache se registran y se tratan como miss.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if c == nil {
		return fn(ctx)
	}

	if v, ok := Peek[T](ctx, c, key); ok {
		c.metrics.CacheLookup(true)
		return v, nil
	}
	c.metrics.CacheLookup(false)

	sk := c.storeKey(key)
	// La llamada compartida no depende de la cancelación del primer caller.
	sctx := context.WithoutCancel(ctx)
	res, err, _ := c.group.Do(sk, func() (any, error) {
		v, err := fn(sctx)
		if err != nil {
			return nil, err
		}
		if err := Put(sctx, c, key, v); err != nil {
			c.log.Warn("cache write failed", map[string]any{"key": sk, "error": err})
		}
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	v, _ := res.(T)
	return v, nil
}

// Peek lee sin llamar upstream.
func Peek[T any](ctx context.Context, c *Cache, key Key) (T, bool) {
	var out T
	raw, ok, err := c.store.Get(ctx, c.storeKey(key))
	if err != nil {
		c.log.Debug("cache read failed", map[string]any{"key": c.storeKey(key), "error": err})
		return out, false
	}
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Debug("failed to unmarshal cached value", map[string]any{"key": c.storeKey(key), "error": err})
		return out, false
	}
	return out, true
}

// Put escribe v con el TTL por defecto.
func Put[T any](ctx context.Context, c *Cache, key Key, v T) error {
	b, err := encode(v)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.storeKey(key), b, c.ttl)
}

// Invalidate borra key y todas sus sub-claves.
func (c *Cache) Invalidate(ctx context.Context, key Key) error {
	if c == nil {
		return nil
	}
	sk := c.storeKey(key)
	return errors.Join(
		c.store.Delete(ctx, sk),
		c.store.DeletePrefix(ctx, sk+":"),
	)
}

// Clear vacía todas las consultas de este cache (p.ej. al cerrar sesión).
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.store.DeletePrefix(ctx, c.prefix)
}
