// Package relation implements lazy relation resolution: proxies that stand
// in for a related remote resource and decide, per member access, whether
// the answer comes from locally known data or needs a one-shot remote
// fetch.
package relation

// Identity is the data needed to address and seed one remote resource: an
// id (possibly absent) plus the fields known locally at construction time.
// Immutable once built.
type Identity struct {
	id    any
	known map[string]any
}

// NewIdentity builds an identity from a partial record. The record may be a
// full representation, just an id, or empty; the map is copied so later
// mutation of the input cannot leak in. The id, when present, is read from
// the "id" key.
func NewIdentity(record map[string]any) Identity {
	known := make(map[string]any, len(record))
	for k, v := range record {
		known[k] = v
	}
	return Identity{id: known["id"], known: known}
}

// ID returns the resource id, or nil when unknown
func (i Identity) ID() any {
	return i.id
}

// Field returns a locally known field. The second return value
// distinguishes absent fields from fields present with a nil value.
func (i Identity) Field(name string) (any, bool) {
	v, ok := i.known[name]
	return v, ok
}

// Fields returns a copy of the locally known fields
func (i Identity) Fields() map[string]any {
	fields := make(map[string]any, len(i.known))
	for k, v := range i.known {
		fields[k] = v
	}
	return fields
}

// Empty reports whether nothing at all is known locally
func (i Identity) Empty() bool {
	return len(i.known) == 0
}
