package scenegraph

import (
	"errors"
	"testing"

	"github.com/dusk-indust/stitch/internal/dialog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obj(id int, attrs ...string) dialog.Object {
	o := dialog.Object{"id": float64(id)}
	for i := 0; i+1 < len(attrs); i += 2 {
		o[attrs[i]] = attrs[i+1]
	}
	return o
}

func TestBuilder_MergeAddsAndExtendsObjects(t *testing.T) {
	b := NewBuilder()

	g1, err := b.Merge(dialog.GraphItem{
		Mergeable: true,
		Objects:   []dialog.Object{obj(0, "color", "red", "shape", "cube")},
	})
	require.NoError(t, err)
	assert.Equal(t, "red", g1.Objects[0]["color"])

	g2, err := b.Merge(dialog.GraphItem{
		Mergeable: true,
		Objects:   []dialog.Object{obj(0, "color", "red", "size", "large"), obj(1, "shape", "sphere")},
	})
	require.NoError(t, err)

	assert.Equal(t, "large", g2.Objects[0]["size"])
	assert.Equal(t, "cube", g2.Objects[0]["shape"])
	assert.Equal(t, []int{0, 1}, g2.ObjectIDs())
	assert.Len(t, g2.History, 2)

	// The earlier snapshot is untouched.
	_, hasSize := g1.Objects[0]["size"]
	assert.False(t, hasSize)
	assert.Len(t, g1.Objects, 1)
	assert.Len(t, g1.History, 1)
	assert.Equal(t, 2, b.Len())
}

func TestBuilder_MergeConflictIsIntegrityError(t *testing.T) {
	b := NewBuilder()
	_, err := b.Merge(dialog.GraphItem{Mergeable: true, Objects: []dialog.Object{obj(3, "color", "red")}})
	require.NoError(t, err)

	_, err = b.Merge(dialog.GraphItem{Mergeable: true, Objects: []dialog.Object{obj(3, "color", "blue")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntegrity)

	var ie *IntegrityError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 3, ie.ObjectID)
	assert.Equal(t, "color", ie.Attr)
	assert.Equal(t, "red", ie.Existing)
	assert.Equal(t, "blue", ie.Incoming)

	// The failed update published nothing.
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, "red", b.Current().Objects[3]["color"])
}

func TestBuilder_NonMergeableStillPublishes(t *testing.T) {
	b := NewBuilder()
	_, err := b.Merge(dialog.GraphItem{Mergeable: true, Objects: []dialog.Object{obj(0, "shape", "cube")}})
	require.NoError(t, err)

	g, err := b.Merge(dialog.GraphItem{
		Mergeable: false,
		Objects:   []dialog.Object{obj(0, "shape", "cylinder"), obj(5, "color", "gray")},
		Relation:  "left",
	})
	require.NoError(t, err, "non-mergeable updates are not checked")

	assert.Equal(t, 2, b.Len())
	assert.Len(t, g.Objects, 1)
	assert.Equal(t, "cube", g.Objects[0]["shape"])
	assert.Empty(t, g.Relationships)
	assert.Len(t, g.History, 2)

	prev, ok := b.At(0)
	require.True(t, ok)
	assert.NotSame(t, prev, g)
}

func TestBuilder_RelationsAppendWithoutDedup(t *testing.T) {
	b := NewBuilder()
	item := dialog.GraphItem{
		Mergeable: true,
		Relation:  "right",
		Objects:   []dialog.Object{obj(1, "color", "red"), obj(2, "color", "blue")},
	}
	_, err := b.Merge(item)
	require.NoError(t, err)
	g, err := b.Merge(item)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, g.Relationships["right"][1])

	first, _ := b.At(0)
	assert.Equal(t, []int{2}, first.Relationships["right"][1], "earlier snapshot keeps its own adjacency")
}

func TestBuilder_RelationNeedsTwoObjects(t *testing.T) {
	b := NewBuilder()
	_, err := b.Merge(dialog.GraphItem{
		Mergeable: true,
		Relation:  "behind",
		Objects:   []dialog.Object{obj(1, "color", "red")},
	})
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Equal(t, 0, b.Len())
}

func TestBuilder_ObjectWithoutID(t *testing.T) {
	b := NewBuilder()
	_, err := b.Merge(dialog.GraphItem{Mergeable: true, Objects: []dialog.Object{{"color": "red"}}})
	assert.ErrorIs(t, err, dialog.ErrObjectID)
}

func TestBuilder_AtBounds(t *testing.T) {
	b := NewBuilder()
	_, ok := b.At(0)
	assert.False(t, ok)
	assert.Empty(t, b.Current().Objects)
	assert.Empty(t, b.Snapshots())
}

func TestKnownAttributes(t *testing.T) {
	g := newGraph()
	g.Objects[0] = obj(0, "shape", "cube", "color", Unknown, "size", "small")
	g.Objects[1] = obj(1, "shape", "cube", "material", "rubber", "count", "3")
	g.Objects[2] = dialog.Object{"id": float64(2), "color": nil}

	known := KnownAttributes(g)

	assert.Equal(t, []string{"cube", "rubber", "small"}, known.Sorted())
	assert.False(t, known.Has(Unknown))
	assert.False(t, known.Has("3"), "only core attributes count")
}

func TestKnownAttributes_NeverContainsUnknown(t *testing.T) {
	g := newGraph()
	for i := 0; i < 8; i++ {
		g.Objects[i] = obj(i, "shape", Unknown, "size", Unknown, "material", Unknown, "color", Unknown)
	}
	assert.Empty(t, KnownAttributes(g))
}

func TestAttrSet(t *testing.T) {
	a := NewAttrSet("red", "cube", "large")
	b := NewAttrSet("cube", "metal", "large")

	assert.Equal(t, []string{"cube", "large"}, a.Intersect(b))
	assert.Equal(t, []string{"cube", "large"}, b.Intersect(a))
	assert.Empty(t, a.Intersect(NewAttrSet()))

	c := a.Clone()
	c.Add("blue")
	assert.False(t, a.Has("blue"))

	data, err := a.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `["cube", "large", "red"]`, string(data))

	var back AttrSet
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, a, back)
}
