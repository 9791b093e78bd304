package schema

// Builder assembles a Descriptor. Declaration order does not matter and a
// re-declared name overwrites the earlier declaration. Builders perform no
// I/O; everything they record is metadata.
type Builder struct {
	d *Descriptor
}

// NewBuilder starts a descriptor for the named resource
func NewBuilder(name string) *Builder {
	return &Builder{
		d: &Descriptor{
			name:    name,
			lazy:    make(map[string]*LazyField),
			methods: make(map[string]Method),
			base:    make(map[string]Method),
		},
	}
}

// LazyRelation declares a lazy single relation. The target resolver is a
// thunk evaluated at first use, so it may reference a descriptor that is
// still being defined (including this one).
func (b *Builder) LazyRelation(name string, target Resolver) *Builder {
	b.d.lazy[name] = &LazyField{Name: name, Kind: KindSingle, Target: target}
	return b
}

// LazyCollection declares a lazy collection relation
func (b *Builder) LazyCollection(name string, target Resolver) *Builder {
	b.d.lazy[name] = &LazyField{Name: name, Kind: KindCollection, Target: target}
	return b
}

// Method defines an override-layer method
func (b *Builder) Method(name string, fn Method) *Builder {
	b.d.methods[name] = fn
	return b
}

// BaseMethod defines a base-layer method. An override of the same name can
// reach it through Call.Super; without an override it is dispatched
// directly.
func (b *Builder) BaseMethod(name string, fn Method) *Builder {
	b.d.base[name] = fn
	return b
}

// Build returns the descriptor. The descriptor must be treated as read-only
// from this point on.
func (b *Builder) Build() *Descriptor {
	return b.d
}
