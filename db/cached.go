package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"pessoas/cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CachedStore serves FindByID from a cache. Persons are never updated or
// deleted, so a cached entry cannot go stale and is never invalidated.
// Cache failures are logged and fall through to the wrapped store.
type CachedStore struct {
	Store
	cache cache.Cache
	log   zerolog.Logger
}

func NewCachedStore(store Store, c cache.Cache, log zerolog.Logger) *CachedStore {
	return &CachedStore{Store: store, cache: c, log: log}
}

func (s *CachedStore) Insert(ctx context.Context, person *Person) error {
	if err := s.Store.Insert(ctx, person); err != nil {
		return err
	}

	s.remember(ctx, person)
	return nil
}

func (s *CachedStore) FindByID(ctx context.Context, id uuid.UUID) (*Person, error) {
	data, err := s.cache.Get(ctx, cacheKey(id))
	if err == nil {
		var person Person
		decodeErr := json.Unmarshal(data, &person)
		if decodeErr == nil {
			return &person, nil
		}
		s.log.Warn().Err(decodeErr).Str("id", id.String()).Msg("discarding unreadable cache entry")
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn().Err(err).Str("id", id.String()).Msg("cache lookup failed")
	}

	person, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.remember(ctx, person)
	return person, nil
}

func (s *CachedStore) remember(ctx context.Context, person *Person) {
	data, err := json.Marshal(person)
	if err != nil {
		s.log.Warn().Err(err).Str("id", person.ID.String()).Msg("encode cache entry")
		return
	}

	if err := s.cache.Set(ctx, cacheKey(person.ID), data); err != nil {
		s.log.Warn().Err(err).Str("id", person.ID.String()).Msg("cache store failed")
	}
}

func cacheKey(id uuid.UUID) string {
	return "id::" + id.String()
}
