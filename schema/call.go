package schema

import "fmt"

// View is the data a method invocation can see. The second return value
// distinguishes "field absent" from "field present with a nil value" —
// the absence signal is what drives remote fallback.
type View interface {
	Field(name string) (any, bool)
}

// MapView adapts a plain record map to a View
type MapView map[string]any

// Field returns the named field from the map
func (m MapView) Field(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Method is a behavior defined on a resource type. It reads data only
// through the Call it receives, which lets the same method body run
// against local-only data or the merged local+remote view.
type Method func(call *Call) (any, error)

// Call carries one method invocation: the member name, the current data
// view, the arguments, and the shadowed base-layer method if the running
// method is an override.
type Call struct {
	name string
	view View
	args []any
	base Method
}

// Name returns the invoked member name
func (c *Call) Name() string {
	return c.name
}

// Args returns the invocation arguments
func (c *Call) Args() []any {
	return c.args
}

// Arg returns the i-th argument, or nil when absent
func (c *Call) Arg(i int) any {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// Field reads a field from the current data view. When the view does not
// contain the field it returns an error wrapping ErrMissingField, which the
// resolver uses to decide that a remote fetch is needed.
func (c *Call) Field(name string) (any, error) {
	v, ok := c.view.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
	}
	return v, nil
}

// StringField reads a field and formats it as a string
func (c *Call) StringField(name string) (string, error) {
	v, err := c.Field(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", v), nil
}

// Super invokes the shadowed base-layer method of the same name against the
// same view and arguments. Only meaningful inside an override; returns
// ErrNoBaseMethod otherwise.
func (c *Call) Super() (any, error) {
	if c.base == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoBaseMethod, c.name)
	}
	sub := &Call{name: c.name, view: c.view, args: c.args}
	return c.base(sub)
}
