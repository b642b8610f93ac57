package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textNode(text string) RawNode {
	return RawNode{"type": "TEXT", "characters": text}
}

func rowNode(label string) RawNode {
	return RawNode{
		"type": "FRAME",
		"children": []any{
			map[string]any(textNode(label)),
		},
	}
}

func TestDetectTableContainerNeedsRepeatedStructure(t *testing.T) {
	container := RawNode{
		"type": "FRAME",
		"children": []any{
			map[string]any(rowNode("a")),
			map[string]any(rowNode("b")),
			map[string]any(rowNode("c")),
			map[string]any(rowNode("d")),
		},
	}
	assert.True(t, detectTableContainer(container))
}

func TestDetectTableContainerFalseBelowThreshold(t *testing.T) {
	container := RawNode{
		"type": "FRAME",
		"children": []any{
			map[string]any(rowNode("a")),
			map[string]any(rowNode("b")),
		},
	}
	assert.False(t, detectTableContainer(container))
}

func TestDetectTableContainerFalseForHeterogeneousChildren(t *testing.T) {
	container := RawNode{
		"type": "FRAME",
		"children": []any{
			map[string]any{"type": "TEXT", "characters": "a"},
			map[string]any{"type": "RECTANGLE"},
			map[string]any{"type": "ELLIPSE"},
			map[string]any{"type": "VECTOR"},
		},
	}
	assert.False(t, detectTableContainer(container))
}

func TestContentSignatureUsesTextPrefix(t *testing.T) {
	sig := contentSignature(textNode("a rather long line of text that exceeds twenty chars"))
	assert.Equal(t, "a rather long line o", sig)
}

func TestContentSignatureFallsBackToStructure(t *testing.T) {
	n := RawNode{"type": "RECTANGLE"}
	sig := contentSignature(n)
	assert.Equal(t, structureSignature(n), sig)
}

func TestEvaluateRowKeepsEveryDistinctSignatureOnFirstSight(t *testing.T) {
	tc := &tableCounter{}
	for _, label := range []string{"a", "b", "c", "d"} {
		d := tc.evaluateRow(rowNode(label))
		assert.True(t, d.keep, "a row type never seen before is always kept")
	}
	assert.Equal(t, 4, tc.rowCount)
}

func TestEvaluateRowRepeatedSignatureCapsAtThree(t *testing.T) {
	tc := &tableCounter{}
	tc.evaluateRow(rowNode("a"))
	tc.evaluateRow(rowNode("a"))
	tc.evaluateRow(rowNode("a"))

	require.Equal(t, 1, tc.rowCount)
	assert.Equal(t, 3, tc.totalRows())
	assert.Equal(t, 0, tc.droppedCount(), "only 3 total rows observed, at the keep limit")

	d := tc.evaluateRow(rowNode("a"))
	assert.False(t, d.keep, "a fourth occurrence of the same signature exceeds its per-signature cap")
	assert.Equal(t, 1, tc.droppedCount())
}

func TestDroppedCountAccountsForOverflow(t *testing.T) {
	tc := &tableCounter{}
	for i := 0; i < 5; i++ {
		tc.evaluateRow(rowNode("same"))
	}
	assert.Equal(t, 5, tc.totalRows())
	assert.Equal(t, 2, tc.droppedCount())
}
