package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Ristretto is an in-process cache, local to one instance of the service.
type Ristretto struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

func NewRistretto(ttl time.Duration) (*Ristretto, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,     // number of keys to track frequency of (10M).
		MaxCost:     1 << 30, // maximum cost of cache (1GB).
		BufferItems: 64,      // number of keys per Get buffer.
	})
	if err != nil {
		return nil, fmt.Errorf("ristretto: %w", err)
	}

	return &Ristretto{cache: c, ttl: ttl}, nil
}

func (r *Ristretto) Get(_ context.Context, key string) ([]byte, error) {
	value, found := r.cache.Get(key)
	if !found {
		return nil, ErrMiss
	}

	b, ok := value.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

// Set is asynchronous: a value may not be visible to Get until the
// internal buffers are drained. Call Wait to force that.
func (r *Ristretto) Set(_ context.Context, key string, value []byte) error {
	r.cache.SetWithTTL(key, value, int64(len(value)), r.ttl)
	return nil
}

func (r *Ristretto) Wait() {
	r.cache.Wait()
}

func (r *Ristretto) Close() {
	r.cache.Close()
}
