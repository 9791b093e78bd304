package relation

import "errors"

var (
	// ErrUnknownMember is returned when a member is not a locally known
	// field, not a target-type method, and not present after the remote
	// fetch. Resolution fails loudly rather than returning nil.
	ErrUnknownMember = errors.New("unknown member")

	// ErrNotDeclared is returned when a lazy field is accessed that the
	// target descriptor never declared
	ErrNotDeclared = errors.New("no lazy field declared")

	// ErrNotSingle is returned when a collection declaration is read as a
	// single relation
	ErrNotSingle = errors.New("lazy field is a collection, not a single relation")

	// ErrNotCollection is returned when a single declaration is read as a
	// collection
	ErrNotCollection = errors.New("lazy field is a single relation, not a collection")

	// ErrInvalidRelationData is returned when a lazy field's seed value has
	// a shape that cannot address a resource (not a record map, or not a
	// sequence of record maps)
	ErrInvalidRelationData = errors.New("invalid relation data")
)
