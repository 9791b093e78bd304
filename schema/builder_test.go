package schema

import (
	"errors"
	"testing"
)

func TestBuilderDeclarations(t *testing.T) {
	t.Run("lazy relation and collection", func(t *testing.T) {
		company := NewBuilder("Company").Build()

		user := NewBuilder("User").
			LazyRelation("company", func() *Descriptor { return company }).
			LazyCollection("posts", func() *Descriptor { return company }).
			Build()

		f, ok := user.LazyField("company")
		if !ok {
			t.Fatal("company should be declared")
		}
		if f.Kind != KindSingle {
			t.Errorf("expected single, got %s", f.Kind)
		}

		f, ok = user.LazyField("posts")
		if !ok {
			t.Fatal("posts should be declared")
		}
		if f.Kind != KindCollection {
			t.Errorf("expected collection, got %s", f.Kind)
		}
	})

	t.Run("redeclaration overwrites", func(t *testing.T) {
		a := NewBuilder("A").Build()
		b := NewBuilder("B").Build()

		d := NewBuilder("Owner").
			LazyRelation("rel", func() *Descriptor { return a }).
			LazyCollection("rel", func() *Descriptor { return b }).
			Build()

		f, ok := d.LazyField("rel")
		if !ok {
			t.Fatal("rel should be declared")
		}
		if f.Kind != KindCollection {
			t.Errorf("last declaration should win, got %s", f.Kind)
		}
		target, err := f.Resolve()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target.Name() != "B" {
			t.Errorf("expected B, got %s", target.Name())
		}
	})

	t.Run("self reference resolves through thunk", func(t *testing.T) {
		var node *Descriptor
		node = NewBuilder("Node").
			LazyRelation("parent", func() *Descriptor { return node }).
			Build()

		f, _ := node.LazyField("parent")
		target, err := f.Resolve()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target != node {
			t.Error("parent should resolve to the node descriptor itself")
		}
	})

	t.Run("mutual references resolve regardless of order", func(t *testing.T) {
		var author, post *Descriptor
		author = NewBuilder("Author").
			LazyCollection("posts", func() *Descriptor { return post }).
			Build()
		post = NewBuilder("Post").
			LazyRelation("author", func() *Descriptor { return author }).
			Build()

		f, _ := author.LazyField("posts")
		target, err := f.Resolve()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if target != post {
			t.Error("posts should resolve to Post")
		}
	})

	t.Run("nil resolver reported", func(t *testing.T) {
		d := NewBuilder("Broken").
			LazyRelation("ghost", func() *Descriptor { return nil }).
			Build()

		f, _ := d.LazyField("ghost")
		if _, err := f.Resolve(); !errors.Is(err, ErrUnresolvedTarget) {
			t.Errorf("expected ErrUnresolvedTarget, got %v", err)
		}
	})

	t.Run("lazy fields sorted by name", func(t *testing.T) {
		a := NewBuilder("A").Build()
		d := NewBuilder("Owner").
			LazyRelation("zeta", func() *Descriptor { return a }).
			LazyRelation("alpha", func() *Descriptor { return a }).
			Build()

		fields := d.LazyFields()
		if len(fields) != 2 {
			t.Fatalf("expected 2 fields, got %d", len(fields))
		}
		if fields[0].Name != "alpha" || fields[1].Name != "zeta" {
			t.Errorf("fields not sorted: %s, %s", fields[0].Name, fields[1].Name)
		}
	})
}
