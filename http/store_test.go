package handler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pessoas/db"
)

// memStore is an in-memory db.Store keeping insertion order.
type memStore struct {
	mu      sync.Mutex
	pessoas []db.Person
	calls   int
}

func (s *memStore) Insert(_ context.Context, p *db.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.pessoas = append(s.pessoas, *p)
	return nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*db.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	for _, p := range s.pessoas {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) Search(_ context.Context, term string) ([]db.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	contains := func(v string) bool {
		return strings.Contains(strings.ToLower(v), strings.ToLower(term))
	}

	found := []db.Person{}
	for _, p := range s.pessoas {
		match := contains(p.Name) || contains(p.Nickname)
		for _, stack := range p.Stacks {
			match = match || contains(stack)
		}
		if match {
			found = append(found, p)
		}
	}
	return found, nil
}

func (s *memStore) Count(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return int64(len(s.pessoas)), nil
}

var errBackend = errors.New("mongo: server selection timeout on 10.0.0.7:27017")

// failingStore fails every operation with errBackend.
type failingStore struct{}

func (failingStore) Insert(context.Context, *db.Person) error { return errBackend }
func (failingStore) FindByID(context.Context, uuid.UUID) (*db.Person, error) {
	return nil, errBackend
}
func (failingStore) Search(context.Context, string) ([]db.Person, error) { return nil, errBackend }
func (failingStore) Count(context.Context) (int64, error)                { return 0, errBackend }

type panickingStore struct{ failingStore }

func (panickingStore) Count(context.Context) (int64, error) { panic("boom") }
