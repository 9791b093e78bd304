// Package resource provides the owning side of lazy relations: a map-backed
// attribute store for one model instance plus the instance-level memoization
// of materialized lazy fields. Proxies themselves never remember whether a
// declaring field was already read; that discipline lives here.
package resource

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/restbound/restbound/relation"
	"github.com/restbound/restbound/schema"
)

// Resource is one model instance: a descriptor, its raw attributes, and
// the lazy fields it has materialized so far. Owned by a single goroutine;
// distinct instances share nothing mutable.
type Resource struct {
	desc      *schema.Descriptor
	transport relation.Transport
	logger    *zap.Logger

	mu          sync.Mutex
	attrs       map[string]any
	relations   map[string]*relation.Proxy
	collections map[string]*relation.Collection
}

// Option configures a Resource
type Option func(*Resource)

// WithLogger sets the logger handed down to materialized proxies
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resource) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a model instance from its raw attributes. The attribute map
// is copied.
func New(desc *schema.Descriptor, attrs map[string]any, transport relation.Transport, opts ...Option) *Resource {
	copied := make(map[string]any, len(attrs))
	for k, v := range attrs {
		copied[k] = v
	}
	r := &Resource{
		desc:        desc,
		transport:   transport,
		logger:      zap.NewNop(),
		attrs:       copied,
		relations:   make(map[string]*relation.Proxy),
		collections: make(map[string]*relation.Collection),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Descriptor returns the instance's type descriptor
func (r *Resource) Descriptor() *schema.Descriptor {
	return r.desc
}

// ID returns the instance's id attribute, or nil
func (r *Resource) ID() any {
	v, _ := r.Get("id")
	return v
}

// Get reads a raw attribute. The second return value distinguishes absent
// attributes from attributes holding nil.
func (r *Resource) Get(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.attrs[name]
	return v, ok
}

// Set writes a raw attribute. Writing a lazy field's seed drops the
// memoized proxy for that field so the next read materializes from the new
// value.
func (r *Resource) Set(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attrs[name] = value
	delete(r.relations, name)
	delete(r.collections, name)
}

// Attributes returns a copy of the raw attributes
func (r *Resource) Attributes() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	attrs := make(map[string]any, len(r.attrs))
	for k, v := range r.attrs {
		attrs[k] = v
	}
	return attrs
}

// Relation reads a lazy single relation. An absent or nil seed resolves to
// nil with no error and no proxy; otherwise the proxy is built once from
// the current seed and returned on every later read. Creation itself never
// performs I/O.
func (r *Resource) Relation(name string) (*relation.Proxy, error) {
	field, ok := r.desc.LazyField(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", relation.ErrNotDeclared, r.desc.Name(), name)
	}
	if field.Kind != schema.KindSingle {
		return nil, fmt.Errorf("%w: %s.%s", relation.ErrNotSingle, r.desc.Name(), name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if proxy, memoized := r.relations[name]; memoized {
		return proxy, nil
	}

	seed := r.attrs[name] // absent and nil both mean a null relation
	var proxy *relation.Proxy
	if seed != nil {
		record, err := relation.AsRecord(seed)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", r.desc.Name(), name, err)
		}
		target, err := field.Resolve()
		if err != nil {
			return nil, err
		}
		proxy = relation.NewProxy(target, record, r.transport, relation.WithLogger(r.logger))
	}

	r.relations[name] = proxy
	return proxy, nil
}

// Collection reads a lazy collection relation. A nil seed is a known-empty
// collection; a seed holding records materializes locally; an attribute
// that was never supplied defers to a one-shot remote collection fetch.
// The collection is built once per instance and field.
func (r *Resource) Collection(name string) (*relation.Collection, error) {
	field, ok := r.desc.LazyField(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", relation.ErrNotDeclared, r.desc.Name(), name)
	}
	if field.Kind != schema.KindCollection {
		return nil, fmt.Errorf("%w: %s.%s", relation.ErrNotCollection, r.desc.Name(), name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, memoized := r.collections[name]; memoized {
		return c, nil
	}

	target, err := field.Resolve()
	if err != nil {
		return nil, err
	}

	seed, present := r.attrs[name]
	var c *relation.Collection
	if present {
		var records []map[string]any
		if seed != nil {
			records, err = relation.AsRecords(seed)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", r.desc.Name(), name, err)
			}
		}
		c = relation.NewCollectionFromRecords(target, records, r.transport, relation.WithLogger(r.logger))
	} else {
		owner := relation.NewIdentity(r.attrs)
		c = relation.NewCollection(target, r.desc.Name(), owner, name, r.transport, relation.WithLogger(r.logger))
	}

	r.collections[name] = c
	return c, nil
}
