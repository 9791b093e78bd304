package schema

import (
	"errors"
	"fmt"
	"testing"
)

func TestCallFieldAccess(t *testing.T) {
	t.Run("present field", func(t *testing.T) {
		d := NewBuilder("User").
			Method("greeting", func(c *Call) (any, error) {
				name, err := c.StringField("name")
				if err != nil {
					return nil, err
				}
				return "hello " + name, nil
			}).
			Build()

		v, err := d.Invoke("greeting", MapView{"name": "alice"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "hello alice" {
			t.Errorf("expected greeting, got %v", v)
		}
	})

	t.Run("missing field signals ErrMissingField", func(t *testing.T) {
		d := NewBuilder("User").
			Method("greeting", func(c *Call) (any, error) {
				return c.Field("name")
			}).
			Build()

		_, err := d.Invoke("greeting", MapView{})
		if !IsMissingField(err) {
			t.Errorf("expected missing field signal, got %v", err)
		}
	})

	t.Run("nil value is present, not missing", func(t *testing.T) {
		d := NewBuilder("User").
			Method("bio", func(c *Call) (any, error) {
				return c.Field("bio")
			}).
			Build()

		v, err := d.Invoke("bio", MapView{"bio": nil})
		if err != nil {
			t.Fatalf("nil value must not signal a missing field: %v", err)
		}
		if v != nil {
			t.Errorf("expected nil, got %v", v)
		}
	})

	t.Run("unknown method", func(t *testing.T) {
		d := NewBuilder("User").Build()
		_, err := d.Invoke("nope", MapView{})
		if !errors.Is(err, ErrMethodNotFound) {
			t.Errorf("expected ErrMethodNotFound, got %v", err)
		}
	})

	t.Run("arguments", func(t *testing.T) {
		d := NewBuilder("User").
			Method("repeat", func(c *Call) (any, error) {
				s, _ := c.Arg(0).(string)
				return s + s, nil
			}).
			Build()

		v, err := d.Invoke("repeat", MapView{}, "ab")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "abab" {
			t.Errorf("expected abab, got %v", v)
		}
		if d.Name() != "User" {
			t.Errorf("unexpected name %s", d.Name())
		}
	})
}

func TestSuperDispatch(t *testing.T) {
	t.Run("override composes with base", func(t *testing.T) {
		d := NewBuilder("User").
			BaseMethod("label", func(c *Call) (any, error) {
				return c.StringField("name")
			}).
			Method("label", func(c *Call) (any, error) {
				base, err := c.Super()
				if err != nil {
					return nil, err
				}
				return fmt.Sprintf("[%v]", base), nil
			}).
			Build()

		v, err := d.Invoke("label", MapView{"name": "alice"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "[alice]" {
			t.Errorf("expected [alice], got %v", v)
		}
	})

	t.Run("base dispatched directly without override", func(t *testing.T) {
		d := NewBuilder("User").
			BaseMethod("label", func(c *Call) (any, error) {
				return "base", nil
			}).
			Build()

		v, err := d.Invoke("label", MapView{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "base" {
			t.Errorf("expected base, got %v", v)
		}
	})

	t.Run("super without base errors", func(t *testing.T) {
		d := NewBuilder("User").
			Method("label", func(c *Call) (any, error) {
				return c.Super()
			}).
			Build()

		_, err := d.Invoke("label", MapView{})
		if !errors.Is(err, ErrNoBaseMethod) {
			t.Errorf("expected ErrNoBaseMethod, got %v", err)
		}
	})

	t.Run("base missing dependency propagates through super", func(t *testing.T) {
		d := NewBuilder("User").
			BaseMethod("label", func(c *Call) (any, error) {
				return c.Field("name")
			}).
			Method("label", func(c *Call) (any, error) {
				return c.Super()
			}).
			Build()

		_, err := d.Invoke("label", MapView{})
		if !IsMissingField(err) {
			t.Errorf("expected missing field signal, got %v", err)
		}
	})
}
