// Package schema holds type descriptors for remote resources: their lazy
// relation declarations and their two-layer method tables. Descriptors are
// built once with a Builder, registered in a Registry, and read-only after
// that; resolution never mutates them.
package schema

import (
	"fmt"
	"sort"
)

// Kind distinguishes single lazy relations from lazy collections
type Kind int

const (
	// KindSingle is a lazy relation to one remote resource
	KindSingle Kind = iota
	// KindCollection is a lazy relation to an ordered set of remote resources
	KindCollection
)

// String returns a human-readable kind name
func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCollection:
		return "collection"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Resolver yields the target descriptor of a lazy field. It is a thunk,
// evaluated at first use rather than declaration time, so self-referential
// and mutually-referential resources work regardless of definition order.
type Resolver func() *Descriptor

// LazyField is the declaration metadata for one lazy relation on a resource
type LazyField struct {
	Name   string
	Kind   Kind
	Target Resolver
}

// Resolve evaluates the target thunk. A resolver that yields nil is a
// declaration bug and reported as such.
func (f *LazyField) Resolve() (*Descriptor, error) {
	if f.Target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedTarget, f.Name)
	}
	target := f.Target()
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnresolvedTarget, f.Name)
	}
	return target, nil
}

// Descriptor describes one resource type: its name, its lazy field
// declarations, and its method tables. The override layer holds methods
// defined on the resource itself; the base layer holds inherited behavior
// an override can reach through Call.Super.
type Descriptor struct {
	name    string
	lazy    map[string]*LazyField
	methods map[string]Method
	base    map[string]Method
}

// Name returns the resource name
func (d *Descriptor) Name() string {
	return d.name
}

// LazyField returns the declaration for a lazy field, if one exists
func (d *Descriptor) LazyField(name string) (*LazyField, bool) {
	f, ok := d.lazy[name]
	return f, ok
}

// LazyFields returns all lazy field declarations, ordered by name
func (d *Descriptor) LazyFields() []*LazyField {
	fields := make([]*LazyField, 0, len(d.lazy))
	for _, f := range d.lazy {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// HasMethod reports whether name is dispatchable on this descriptor,
// through either layer
func (d *Descriptor) HasMethod(name string) bool {
	_, override := d.methods[name]
	_, base := d.base[name]
	return override || base
}

// BaseMethod returns the base-layer method for name, if one exists
func (d *Descriptor) BaseMethod(name string) (Method, bool) {
	m, ok := d.base[name]
	return m, ok
}

// Invoke dispatches name against the method tables, reading fields through
// view. The override layer wins; an override can reach the shadowed base
// method via Call.Super. Returns ErrMethodNotFound when neither layer
// defines the name.
func (d *Descriptor) Invoke(name string, view View, args ...any) (any, error) {
	fn, ok := d.methods[name]
	base := d.base[name]
	if !ok {
		fn = base
		base = nil
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, d.name, name)
	}

	call := &Call{name: name, view: view, args: args, base: base}
	return fn(call)
}
