package querycache

import (
	"context"
	"errors"
	"fmt"
)

type TxState int

const (
	TxIdle TxState = iota
	TxPending
	TxCommitted
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxPending:
		return "pending"
	case TxCommitted:
		return "committed"
	case TxRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

var ErrTxState = errors.New("querycache: invalid transaction state")

// Tx es una mutación optimista sobre una clave:
// snapshot -> escritura especulativa -> commit, o rollback al snapshot si
// la llamada upstream falla. Al terminar (Settle) la clave se invalida.
//
// Un Tx se usa desde una sola goroutine.
type Tx[T any] struct {
	cache *Cache
	key   Key
	state TxState

	snapshot    T
	hasSnapshot bool
}

func NewTx[T any](c *Cache, key Key) *Tx[T] {
	return &Tx[T]{cache: c, key: key}
}

func (tx *Tx[T]) State() TxState { return tx.state }

// Begin guarda el valor actual y escribe apply(valor). Si la clave no está
// cacheada no hay nada que actualizar de forma especulativa.
func (tx *Tx[T]) Begin(ctx context.Context, apply func(T) T) error {
	if tx.state != TxIdle {
		return fmt.Errorf("%w: begin from %s", ErrTxState, tx.state)
	}
	tx.state = TxPending

	current, ok := Peek[T](ctx, tx.cache, tx.key)
	if !ok {
		return nil
	}
	tx.snapshot = current
	tx.hasSnapshot = true

	if apply == nil {
		return nil
	}
	return Put(ctx, tx.cache, tx.key, apply(current))
}

func (tx *Tx[T]) Commit() error {
	if tx.state != TxPending {
		return fmt.Errorf("%w: commit from %s", ErrTxState, tx.state)
	}
	tx.state = TxCommitted
	return nil
}

// Rollback restaura el snapshot (o borra la clave si no había).
func (tx *Tx[T]) Rollback(ctx context.Context) error {
	if tx.state != TxPending {
		return fmt.Errorf("%w: rollback from %s", ErrTxState, tx.state)
	}
	tx.state = TxRolledBack
	if tx.hasSnapshot {
		return Put(ctx, tx.cache, tx.key, tx.snapshot)
	}
	return tx.cache.store.Delete(ctx, tx.cache.storeKey(tx.key))
}

// Settle invalida la clave para forzar un refetch, haya o no fallado.
func (tx *Tx[T]) Settle(ctx context.Context) error {
	if tx.state != TxCommitted && tx.state != TxRolledBack {
		return fmt.Errorf("%w: settle from %s", ErrTxState, tx.state)
	}
	return tx.cache.Invalidate(ctx, tx.key)
}

// Mutate ejecuta el ciclo completo. Devuelve el error de call, no los de
// la cache (esos se registran).
func Mutate[T any](ctx context.Context, c *Cache, key Key, apply func(T) T, call func(ctx context.Context) error) (TxState, error) {
	tx := NewTx[T](c, key)
	if err := tx.Begin(ctx, apply); err != nil {
		c.log.Warn("optimistic update failed", map[string]any{"key": key.String(), "error": err})
	}

	callErr := call(ctx)
	if callErr != nil {
		if err := tx.Rollback(ctx); err != nil {
			c.log.Warn("rollback failed", map[string]any{"key": key.String(), "error": err})
		}
	} else {
		_ = tx.Commit()
	}

	if err := tx.Settle(ctx); err != nil {
		c.log.Warn("invalidate failed", map[string]any{"key": key.String(), "error": err})
	}
	return tx.State(), callErr
}
