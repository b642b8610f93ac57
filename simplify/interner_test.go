package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternDeduplicatesEqualValues(t *testing.T) {
	g := newGlobalVars()
	value := map[string]any{"hex": "#FF0000", "opacity": 1.0}

	id1 := g.intern(value, "fill")
	id2 := g.intern(value, "fill")

	assert.Equal(t, id1, id2)
	assert.Equal(t, 2, g.usageCount[id1])
}

func TestInternDistinctValuesGetDistinctIDs(t *testing.T) {
	g := newGlobalVars()
	id1 := g.intern(map[string]any{"hex": "#FF0000"}, "fill")
	id2 := g.intern(map[string]any{"hex": "#00FF00"}, "fill")
	assert.NotEqual(t, id1, id2)
}

func TestStyleIDShape(t *testing.T) {
	g := newGlobalVars()
	id := g.intern("x", "style")
	assert.Regexp(t, `^style_[A-F0-9]{6}$`, string(id))
}

func TestFinalizeInlinesBelowThreshold(t *testing.T) {
	g := newGlobalVars()
	below := g.intern("rare", "fill")
	atThreshold := g.intern("common", "fill")
	g.intern("common", "fill")
	g.intern("common", "fill")

	node := &SimplifiedNode{
		ID: "a",
		Fills: Ref(below),
	}
	other := &SimplifiedNode{ID: "b", Fills: Ref(atThreshold)}

	g.finalize([]*SimplifiedNode{node, other})

	assert.False(t, node.Fills.IsRef(), "usage count 1 must inline")
	assert.Equal(t, "rare", node.Fills.Value())

	assert.True(t, other.Fills.IsRef(), "usage count 3 meets the interning threshold and stays referenced")

	_, stillPresent := g.Styles[below]
	assert.False(t, stillPresent, "inlined styles are pruned from Styles")
}

func TestFinalizeRecursesIntoChildren(t *testing.T) {
	g := newGlobalVars()
	id := g.intern("only-used-once", "fill")
	child := &SimplifiedNode{ID: "child", Fills: Ref(id)}
	parent := &SimplifiedNode{ID: "parent", Children: []*SimplifiedNode{child}}

	g.finalize([]*SimplifiedNode{parent})

	require.False(t, child.Fills.IsRef())
	assert.Equal(t, "only-used-once", child.Fills.Value())
}

func TestFinalizeIsIdempotent(t *testing.T) {
	g := newGlobalVars()
	id := g.intern("v", "fill")
	node := &SimplifiedNode{ID: "a", Fills: Ref(id)}

	g.finalize([]*SimplifiedNode{node})
	firstPass := node.Fills

	g.finalize([]*SimplifiedNode{node})
	assert.Equal(t, firstPass, node.Fills)
}
