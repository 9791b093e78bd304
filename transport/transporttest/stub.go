// Package transporttest provides test doubles for the transport contract:
// an in-memory Stub with fetch counters, and an HTTP server that serves a
// Stub's records over the routes the REST transport expects.
package transporttest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/restbound/restbound/relation"
)

// ErrNotSeeded is returned for a resource or collection the stub has no
// record for
var ErrNotSeeded = errors.New("not seeded")

// Stub is an in-memory Transport. Every fetch is counted, which is how
// tests assert the zero-fetch and at-most-once-fetch properties.
type Stub struct {
	mu          sync.Mutex
	resources   map[string]map[string]map[string]any
	collections map[string][]map[string]any
	forcedErr   error

	resourceFetches   int
	collectionFetches int
}

// NewStub creates an empty stub
func NewStub() *Stub {
	return &Stub{
		resources:   make(map[string]map[string]map[string]any),
		collections: make(map[string][]map[string]any),
	}
}

// SeedResource registers the record returned for one resource id
func (s *Stub) SeedResource(resource string, id any, record map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.resources[resource] == nil {
		s.resources[resource] = make(map[string]map[string]any)
	}
	s.resources[resource][fmt.Sprint(id)] = record
}

// SeedCollection registers the records returned for one owner's collection
func (s *Stub) SeedCollection(ownerResource string, ownerID any, field string, records []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collectionKey(ownerResource, ownerID, field)] = records
}

// FailWith makes every subsequent fetch return err
func (s *Stub) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forcedErr = err
}

// FetchResource implements relation.Transport
func (s *Stub) FetchResource(_ context.Context, resource string, identity relation.Identity) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resourceFetches++
	if s.forcedErr != nil {
		return nil, s.forcedErr
	}

	record, ok := s.resources[resource][fmt.Sprint(identity.ID())]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%v", ErrNotSeeded, resource, identity.ID())
	}
	return record, nil
}

// FetchCollection implements relation.Transport. Unseeded collections
// return nil, which materializes as empty.
func (s *Stub) FetchCollection(_ context.Context, ownerResource string, owner relation.Identity, field string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectionFetches++
	if s.forcedErr != nil {
		return nil, s.forcedErr
	}

	return s.collections[collectionKey(ownerResource, owner.ID(), field)], nil
}

// ResourceFetches returns how many resource fetches have run
func (s *Stub) ResourceFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resourceFetches
}

// CollectionFetches returns how many collection fetches have run
func (s *Stub) CollectionFetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectionFetches
}

// Fetches returns the total fetch count across both operations
func (s *Stub) Fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resourceFetches + s.collectionFetches
}

func collectionKey(ownerResource string, ownerID any, field string) string {
	return fmt.Sprintf("%s/%v/%s", ownerResource, ownerID, field)
}

var _ relation.Transport = (*Stub)(nil)
