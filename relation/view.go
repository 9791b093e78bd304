package relation

// localView exposes only the locally known fields of an identity. Methods
// invoked against it that touch anything else hit the missing-field signal
// and fall through to the remote tier.
type localView struct {
	identity Identity
}

func (v localView) Field(name string) (any, bool) {
	return v.identity.Field(name)
}

// layeredView is the union of local and fetched data. Local fields shadow
// remote ones: the local tier is the one the caller supplied and is
// consulted first throughout resolution.
type layeredView struct {
	identity Identity
	remote   map[string]any
}

func (v layeredView) Field(name string) (any, bool) {
	if x, ok := v.identity.Field(name); ok {
		return x, true
	}
	x, ok := v.remote[name]
	return x, ok
}
