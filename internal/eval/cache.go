package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/fe64/nnuetrain/internal/domain"
	"github.com/fe64/nnuetrain/internal/target"
)

// Store persists engine scores between runs. It is safe for concurrent use.
type Store struct {
	db *badger.DB
}

// OpenStore opens the score database in dir. An empty dir keeps it in memory.
func OpenStore(dir string) (*Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open eval cache %v: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func storeKey(key uint64, depth int) []byte {
	return []byte(fmt.Sprintf("eval/%016x/%d", key, depth))
}

func (s *Store) get(key []byte) (target.Score, bool, error) {
	var score target.Score
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &score)
		})
	})
	return score, found, err
}

func (s *Store) put(key []byte, score target.Score) error {
	data, err := json.Marshal(score)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// CachedEvaluator answers from the store and asks inner only on a miss.
type CachedEvaluator struct {
	inner  target.Evaluator
	store  *Store
	hits   atomic.Int64
	misses atomic.Int64
}

func NewCachedEvaluator(inner target.Evaluator, store *Store) *CachedEvaluator {
	return &CachedEvaluator{
		inner: inner,
		store: store,
	}
}

func (c *CachedEvaluator) Evaluate(ctx context.Context, pos *domain.Position, depth int) (target.Score, error) {
	return c.EvaluateKey(ctx, pos.Key(), pos, depth)
}

// EvaluateKey is Evaluate with the position key already known.
func (c *CachedEvaluator) EvaluateKey(ctx context.Context, posKey uint64, pos *domain.Position, depth int) (target.Score, error) {
	var key = storeKey(posKey, depth)
	score, found, err := c.store.get(key)
	if err != nil {
		return target.Score{}, err
	}
	if found {
		c.hits.Add(1)
		return score, nil
	}
	c.misses.Add(1)
	score, err = c.inner.Evaluate(ctx, pos, depth)
	if err != nil {
		return target.Score{}, err
	}
	if err := c.store.put(key, score); err != nil {
		return target.Score{}, err
	}
	return score, nil
}

func (c *CachedEvaluator) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close closes the wrapped evaluator. The store stays open.
func (c *CachedEvaluator) Close() error {
	if closer, ok := c.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
