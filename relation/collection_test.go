package relation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restbound/restbound/relation"
	"github.com/restbound/restbound/schema"
	"github.com/restbound/restbound/transport/transporttest"
)

func postDescriptor() *schema.Descriptor {
	return schema.NewBuilder("Post").Build()
}

// TestEmptySeedMaterializesEmpty: a collection seeded with no value is an
// empty sequence — never nil, never an error, and never a fetch
func TestEmptySeedMaterializesEmpty(t *testing.T) {
	stub := transporttest.NewStub()
	c := relation.NewCollectionFromRecords(postDescriptor(), nil, stub)

	elems, err := c.Materialize(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, elems)
	assert.Empty(t, elems)
	assert.Equal(t, 0, stub.Fetches())
}

// TestLocalSourceNeverFetchesMembership: records supplied locally fix the
// membership; only element-level access may fetch
func TestLocalSourceNeverFetchesMembership(t *testing.T) {
	stub := transporttest.NewStub()
	stub.SeedResource("Post", 2, map[string]any{"id": 2, "body": "remote body"})

	c := relation.NewCollectionFromRecords(postDescriptor(), []map[string]any{
		{"id": 1, "title": "first"},
		{"id": 2, "title": "second"},
	}, stub)

	elems, err := c.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, 0, stub.CollectionFetches())

	// locally seeded element fields cost nothing
	v, err := elems[0].Get(context.Background(), "title")
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.Equal(t, 0, stub.Fetches())

	// a remote-only element field fetches that element, nothing else
	v, err = elems[1].Get(context.Background(), "body")
	require.NoError(t, err)
	assert.Equal(t, "remote body", v)
	assert.Equal(t, 1, stub.ResourceFetches())
	assert.Equal(t, 0, stub.CollectionFetches())
}

// TestRemoteSourceFetchesOnce: membership unknown locally is fetched on
// first materialization and memoized
func TestRemoteSourceFetchesOnce(t *testing.T) {
	stub := transporttest.NewStub()
	stub.SeedCollection("User", 1, "posts", []map[string]any{
		{"id": 10, "title": "a"},
		{"id": 11, "title": "b"},
	})

	owner := relation.NewIdentity(map[string]any{"id": 1})
	c := relation.NewCollection(postDescriptor(), "User", owner, "posts", stub)

	assert.False(t, c.Loaded())

	elems, err := c.Materialize(context.Background())
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.Equal(t, 1, stub.CollectionFetches())
	assert.True(t, c.Loaded())

	again, err := c.Materialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, elems[0], again[0])
	assert.Equal(t, 1, stub.CollectionFetches())

	n, err := c.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// TestAbsentRemoteResultIsEmpty: an absent collection after the fetch is
// an empty sequence, not an error
func TestAbsentRemoteResultIsEmpty(t *testing.T) {
	stub := transporttest.NewStub()
	owner := relation.NewIdentity(map[string]any{"id": 1})
	c := relation.NewCollection(postDescriptor(), "User", owner, "posts", stub)

	elems, err := c.Materialize(context.Background())
	require.NoError(t, err)
	assert.Empty(t, elems)
	assert.Equal(t, 1, stub.CollectionFetches())
}

// TestCollectionFetchFailureMemoized: a failed membership fetch surfaces
// the same error on every materialization without retrying
func TestCollectionFetchFailureMemoized(t *testing.T) {
	boom := errors.New("gateway timeout")
	stub := transporttest.NewStub()
	stub.FailWith(boom)

	owner := relation.NewIdentity(map[string]any{"id": 1})
	c := relation.NewCollection(postDescriptor(), "User", owner, "posts", stub)

	_, err := c.Materialize(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = c.Materialize(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, stub.CollectionFetches())
}

// TestCollectionString: introspection without materialization
func TestCollectionString(t *testing.T) {
	stub := transporttest.NewStub()
	c := relation.NewCollectionFromRecords(postDescriptor(), []map[string]any{{"id": 1}}, stub)

	assert.Contains(t, c.String(), "not materialized")
	assert.Equal(t, 0, stub.Fetches())

	_, err := c.Materialize(context.Background())
	require.NoError(t, err)
	assert.Contains(t, c.String(), "1 elements")
}

// TestProxyCollection exercises collection access through a parent proxy:
// local seed, explicit null seed, and absent seed
func TestProxyCollection(t *testing.T) {
	post := postDescriptor()
	user := schema.NewBuilder("User").
		LazyCollection("posts", func() *schema.Descriptor { return post }).
		Build()

	t.Run("local seed", func(t *testing.T) {
		stub := transporttest.NewStub()
		proxy := relation.NewProxy(user, map[string]any{
			"id":    1,
			"posts": []any{map[string]any{"id": 10, "title": "a"}},
		}, stub)

		c, err := proxy.Collection(context.Background(), "posts")
		require.NoError(t, err)

		elems, err := c.Materialize(context.Background())
		require.NoError(t, err)
		require.Len(t, elems, 1)
		assert.Equal(t, "Post", elems[0].Target().Name())
		assert.Equal(t, 0, stub.Fetches())

		// memoized on the owning proxy
		again, err := proxy.Collection(context.Background(), "posts")
		require.NoError(t, err)
		assert.Same(t, c, again)
	})

	t.Run("explicit null seed is known empty", func(t *testing.T) {
		stub := transporttest.NewStub()
		proxy := relation.NewProxy(user, map[string]any{"id": 1, "posts": nil}, stub)

		c, err := proxy.Collection(context.Background(), "posts")
		require.NoError(t, err)

		elems, err := c.Materialize(context.Background())
		require.NoError(t, err)
		assert.Empty(t, elems)
		assert.Equal(t, 0, stub.Fetches())
	})

	t.Run("absent seed fetches the collection", func(t *testing.T) {
		stub := transporttest.NewStub()
		stub.SeedCollection("User", 1, "posts", []map[string]any{{"id": 10}})
		proxy := relation.NewProxy(user, map[string]any{"id": 1}, stub)

		c, err := proxy.Collection(context.Background(), "posts")
		require.NoError(t, err)

		elems, err := c.Materialize(context.Background())
		require.NoError(t, err)
		require.Len(t, elems, 1)
		assert.Equal(t, 1, stub.CollectionFetches())
		assert.Equal(t, 0, stub.ResourceFetches())
	})
}
