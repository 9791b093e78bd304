package relation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/restbound/restbound/schema"
)

// Collection is the sequence variant of Proxy. With a local source it
// builds one element proxy per record and never fetches its membership;
// without one it performs a single remote collection fetch on first
// materialization. Either way the element sequence is memoized and each
// element remains independently lazy.
type Collection struct {
	target        *schema.Descriptor
	ownerResource string
	owner         Identity
	field         string
	transport     Transport
	logger        *zap.Logger

	source  []map[string]any
	sourced bool

	mu     sync.Mutex
	loaded bool
	elems  []*Proxy
	err    error
}

// NewCollectionFromRecords builds a collection from locally supplied
// partial records. The source counts as present even when empty or nil:
// membership is known and no collection-level fetch will ever happen.
func NewCollectionFromRecords(target *schema.Descriptor, records []map[string]any, transport Transport, opts ...Option) *Collection {
	s := newSettings(opts)
	return &Collection{
		target:    target,
		transport: transport,
		logger:    s.logger,
		source:    records,
		sourced:   true,
	}
}

// NewCollection builds a collection whose membership is unknown locally.
// The first materialization fetches it through the transport's collection
// operation for the owning resource.
func NewCollection(target *schema.Descriptor, ownerResource string, owner Identity, field string, transport Transport, opts ...Option) *Collection {
	s := newSettings(opts)
	return &Collection{
		target:        target,
		ownerResource: ownerResource,
		owner:         owner,
		field:         field,
		transport:     transport,
		logger:        s.logger,
	}
}

// Target returns the element type descriptor
func (c *Collection) Target() *schema.Descriptor {
	return c.target
}

// Loaded reports whether the element sequence has been materialized
func (c *Collection) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// String describes the collection without materializing it
func (c *Collection) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded && c.err == nil {
		return fmt.Sprintf("collection of %s (%d elements)", c.target.Name(), len(c.elems))
	}
	return fmt.Sprintf("collection of %s (not materialized)", c.target.Name())
}

// Materialize returns the ordered element proxies. The first call builds
// them (fetching remotely only when no local source exists); later calls
// return the memoized sequence, or the memoized error after a failed
// fetch — the collection never retries on its own. An absent remote result
// materializes as empty, never as an error.
func (c *Collection) Materialize(ctx context.Context) ([]*Proxy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.elems, c.err
	}

	records := c.source
	if !c.sourced {
		if c.transport == nil {
			c.loaded = true
			c.err = fmt.Errorf("%w: cannot fetch collection %s.%s", ErrNoTransport, c.ownerResource, c.field)
			return nil, c.err
		}

		c.logger.Debug("fetching remote collection",
			zap.String("owner", c.ownerResource),
			zap.Any("owner_id", c.owner.ID()),
			zap.String("field", c.field))

		fetched, err := c.transport.FetchCollection(ctx, c.ownerResource, c.owner, c.field)
		if err != nil {
			c.loaded = true
			c.err = err
			return nil, err
		}
		records = fetched
	}

	elems := make([]*Proxy, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		elems = append(elems, NewProxy(c.target, record, c.transport, WithLogger(c.logger)))
	}

	c.elems = elems
	c.loaded = true
	return c.elems, nil
}

// Len materializes the collection if needed and returns its size
func (c *Collection) Len(ctx context.Context) (int, error) {
	elems, err := c.Materialize(ctx)
	if err != nil {
		return 0, err
	}
	return len(elems), nil
}
