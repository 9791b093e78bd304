package relation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/restbound/restbound/schema"
)

// FetchState tracks the remote-fetch lifecycle of a proxy. Transitions are
// monotonic: NotFetched -> Fetching -> Fetched or Failed, never backwards.
type FetchState int

const (
	// StateNotFetched means no remote fetch has been attempted
	StateNotFetched FetchState = iota
	// StateFetching means the one fetch is in flight
	StateFetching
	// StateFetched means remote data is cached for the proxy's lifetime
	StateFetched
	// StateFailed means the one fetch failed; the error is memoized and
	// surfaced on every later access that needs remote data
	StateFailed
)

// String returns a human-readable state name
func (s FetchState) String() string {
	switch s {
	case StateNotFetched:
		return "not fetched"
	case StateFetching:
		return "fetching"
	case StateFetched:
		return "fetched"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("FetchState(%d)", int(s))
	}
}

// ErrNoTransport is returned when resolution needs remote data but the
// proxy was built without a transport
var ErrNoTransport = errors.New("no transport configured")

// Proxy stands in for one related remote resource. It answers member
// accesses from locally known data when it can and performs at most one
// remote fetch when it cannot. A proxy belongs to the instance that
// produced it and is not shared.
type Proxy struct {
	target    *schema.Descriptor
	identity  Identity
	transport Transport
	logger    *zap.Logger

	mu       sync.Mutex
	state    FetchState
	remote   map[string]any
	fetchErr error

	// children are lazy relations of this proxy itself, memoized here
	// because the proxy owns them
	children    map[string]*Proxy
	collections map[string]*Collection
}

// NewProxy builds a proxy for target seeded with a partial record. A nil
// record means the relation is null: no proxy is created and nil is
// returned. The transport may be nil for callers that only ever touch
// locally satisfiable members.
func NewProxy(target *schema.Descriptor, record map[string]any, transport Transport, opts ...Option) *Proxy {
	if record == nil {
		return nil
	}
	s := newSettings(opts)
	return &Proxy{
		target:    target,
		identity:  NewIdentity(record),
		transport: transport,
		logger:    s.logger,
	}
}

// Target returns the target type descriptor
func (p *Proxy) Target() *schema.Descriptor {
	return p.target
}

// Identity returns the identity the proxy addresses
func (p *Proxy) Identity() Identity {
	return p.identity
}

// State returns the current fetch state
func (p *Proxy) State() FetchState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Fetched reports whether remote data is cached
func (p *Proxy) Fetched() bool {
	return p.State() == StateFetched
}

// String describes the proxy's own identity and state. It deliberately
// never dispatches into target-type methods: introspection must not be
// able to trigger fetches or side effects.
func (p *Proxy) String() string {
	return fmt.Sprintf("%s(id=%v, %s)", p.target.Name(), p.identity.ID(), p.State())
}

// Get resolves an attribute access on the proxy
func (p *Proxy) Get(ctx context.Context, name string) (any, error) {
	return p.resolve(ctx, name, nil)
}

// Call resolves a method call on the proxy
func (p *Proxy) Call(ctx context.Context, name string, args ...any) (any, error) {
	return p.resolve(ctx, name, args)
}

// resolve implements the ordered resolution policy: locally known field
// first, then a target method invoked against local data only, then one
// memoized remote fetch and a retry against the merged view, and finally
// an unknown-member failure. Each step short-circuits.
func (p *Proxy) resolve(ctx context.Context, name string, args []any) (any, error) {
	// locally known field: answered with zero I/O
	if v, ok := p.identity.Field(name); ok {
		return v, nil
	}

	// target method against local data only. Success and ordinary errors
	// both return here; only a missing local dependency falls through.
	hasMethod := p.target.HasMethod(name)
	if hasMethod {
		v, err := p.target.Invoke(name, localView{identity: p.identity}, args...)
		if err == nil || !schema.IsMissingField(err) {
			return v, err
		}
	}

	// remote fallback: at most one fetch per proxy, transport errors
	// propagated untouched
	remote, err := p.ensureFetched(ctx)
	if err != nil {
		return nil, err
	}

	view := layeredView{identity: p.identity, remote: remote}
	if hasMethod {
		// a dependency still missing after the fetch is the method's own
		// failure now, not an unknown member
		return p.target.Invoke(name, view, args...)
	}
	if v, ok := view.Field(name); ok {
		return v, nil
	}

	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownMember, p.target.Name(), name)
}

// Fetch forces the remote fetch and returns the remote data. Like every
// other path it is at-most-once: repeated calls return the memoized record
// or the memoized error.
func (p *Proxy) Fetch(ctx context.Context) (map[string]any, error) {
	return p.ensureFetched(ctx)
}

// ensureFetched is the per-proxy fetch cache. The mutex doubles as the
// run-once guard: a resolution needing remote data blocks until the single
// fetch completes or fails.
func (p *Proxy) ensureFetched(ctx context.Context) (map[string]any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case StateFetched:
		return p.remote, nil
	case StateFailed:
		return nil, p.fetchErr
	}

	if p.transport == nil {
		p.state = StateFailed
		p.fetchErr = fmt.Errorf("%w: cannot fetch %s", ErrNoTransport, p.target.Name())
		return nil, p.fetchErr
	}

	p.state = StateFetching
	p.logger.Debug("fetching remote resource",
		zap.String("resource", p.target.Name()),
		zap.Any("id", p.identity.ID()))

	record, err := p.transport.FetchResource(ctx, p.target.Name(), p.identity)
	if err != nil {
		p.state = StateFailed
		p.fetchErr = err
		return nil, err
	}
	if record == nil {
		record = map[string]any{}
	}
	p.remote = record
	p.state = StateFetched
	return p.remote, nil
}

// Relation materializes a lazy single relation declared on the target
// type. The seed comes from locally known data when present; otherwise the
// proxy's own record is fetched first. A nil seed means a null relation:
// the result is nil with no error. Results are memoized per field.
func (p *Proxy) Relation(ctx context.Context, name string) (*Proxy, error) {
	field, ok := p.target.LazyField(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotDeclared, p.target.Name(), name)
	}
	if field.Kind != schema.KindSingle {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotSingle, p.target.Name(), name)
	}

	p.mu.Lock()
	if child, memoized := p.children[name]; memoized {
		p.mu.Unlock()
		return child, nil
	}
	p.mu.Unlock()

	seed, ok := p.identity.Field(name)
	if !ok {
		remote, err := p.ensureFetched(ctx)
		if err != nil {
			return nil, err
		}
		seed = remote[name]
	}

	var child *Proxy
	if seed != nil {
		record, err := AsRecord(seed)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", p.target.Name(), name, err)
		}
		target, err := field.Resolve()
		if err != nil {
			return nil, err
		}
		child = NewProxy(target, record, p.transport, WithLogger(p.logger))
	}

	p.mu.Lock()
	if p.children == nil {
		p.children = make(map[string]*Proxy)
	}
	p.children[name] = child
	p.mu.Unlock()
	return child, nil
}

// Collection materializes a lazy collection declared on the target type.
// A seed present locally (or in already-fetched remote data) makes a
// local-source collection; an explicitly nil seed is a known-empty
// collection; an absent seed defers to the collection's own one-shot
// remote fetch. Results are memoized per field.
func (p *Proxy) Collection(ctx context.Context, name string) (*Collection, error) {
	field, ok := p.target.LazyField(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotDeclared, p.target.Name(), name)
	}
	if field.Kind != schema.KindCollection {
		return nil, fmt.Errorf("%w: %s.%s", ErrNotCollection, p.target.Name(), name)
	}

	p.mu.Lock()
	if c, memoized := p.collections[name]; memoized {
		p.mu.Unlock()
		return c, nil
	}
	seed, present := p.identity.Field(name)
	if !present && p.state == StateFetched {
		seed, present = p.remote[name]
	}
	p.mu.Unlock()

	target, err := field.Resolve()
	if err != nil {
		return nil, err
	}

	var c *Collection
	if present {
		var records []map[string]any
		if seed != nil {
			records, err = AsRecords(seed)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", p.target.Name(), name, err)
			}
		}
		c = NewCollectionFromRecords(target, records, p.transport, WithLogger(p.logger))
	} else {
		c = NewCollection(target, p.target.Name(), p.identity, name, p.transport, WithLogger(p.logger))
	}

	p.mu.Lock()
	if p.collections == nil {
		p.collections = make(map[string]*Collection)
	}
	p.collections[name] = c
	p.mu.Unlock()
	return c, nil
}

// AsRecord coerces a lazy field seed value into a record map
func AsRecord(v any) (map[string]any, error) {
	record, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected record, got %T", ErrInvalidRelationData, v)
	}
	return record, nil
}

// AsRecords coerces a lazy collection seed into a slice of record maps.
// JSON decoding yields []any, so both shapes are accepted.
func AsRecords(v any) ([]map[string]any, error) {
	switch s := v.(type) {
	case []map[string]any:
		return s, nil
	case []any:
		records := make([]map[string]any, 0, len(s))
		for _, item := range s {
			record, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: expected record element, got %T", ErrInvalidRelationData, item)
			}
			records = append(records, record)
		}
		return records, nil
	default:
		return nil, fmt.Errorf("%w: expected record sequence, got %T", ErrInvalidRelationData, v)
	}
}
