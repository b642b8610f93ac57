package simplify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHex(t *testing.T) {
	hex := toHex(RawNode{"r": 1.0, "g": 0.0, "b": 0.0})
	assert.Equal(t, "#FF0000", hex)
}

func TestTransformFillSolid(t *testing.T) {
	paint := RawNode{
		"type":    "SOLID",
		"opacity": 0.5,
		"color":   map[string]any{"r": 0.0, "g": 0.0, "b": 1.0, "a": 1.0},
	}
	fill, ok := transformFill(paint)
	require.True(t, ok)
	assert.Equal(t, "SOLID", fill.Type)
	assert.Equal(t, "#0000FF", fill.Hex)
	assert.Equal(t, 0.5, fill.Opacity)
}

func TestTransformFillInvisibleDropped(t *testing.T) {
	paint := RawNode{"type": "SOLID", "visible": false, "color": map[string]any{}}
	_, ok := transformFill(paint)
	assert.False(t, ok)
}

func TestTransformFillsSkipsInvisiblePaints(t *testing.T) {
	node := RawNode{
		"fills": []any{
			map[string]any{"type": "SOLID", "visible": false, "color": map[string]any{}},
			map[string]any{"type": "SOLID", "color": map[string]any{"r": 1.0, "g": 1.0, "b": 1.0, "a": 1.0}},
		},
	}
	fills := transformFills(node)
	require.Len(t, fills, 1)
	assert.Equal(t, "#FFFFFF", fills[0].Hex)
}

func TestCssShorthandCollapsesUniform(t *testing.T) {
	assert.Equal(t, "4px", cssShorthand(4, 4, 4, 4))
	assert.Equal(t, "4px 8px", cssShorthand(4, 8, 4, 8))
	assert.Equal(t, "4px 8px 12px", cssShorthand(4, 8, 12, 8))
	assert.Equal(t, "1px 2px 3px 4px", cssShorthand(1, 2, 3, 4))
}

func TestTransformStrokesWeightAndDashes(t *testing.T) {
	node := RawNode{
		"strokes": []any{
			map[string]any{"type": "SOLID", "color": map[string]any{"r": 0.0, "g": 0.0, "b": 0.0, "a": 1.0}},
		},
		"strokeWeight": 2.0,
		"dashPattern":  []any{4.0, 2.0},
	}
	stroke, ok := transformStrokes(node)
	require.True(t, ok)
	assert.Equal(t, "2px", stroke.StrokeWeight)
	assert.Equal(t, []float64{4, 2}, stroke.StrokeDashes)
}

func TestTransformStrokesEmptyWhenNoVisiblePaint(t *testing.T) {
	_, ok := transformStrokes(RawNode{})
	assert.False(t, ok)
}

func TestTransformEffectsDropShadow(t *testing.T) {
	node := RawNode{
		"effects": []any{
			map[string]any{
				"type":   "DROP_SHADOW",
				"color":  map[string]any{"r": 0.0, "g": 0.0, "b": 0.0, "a": 0.25},
				"offset": map[string]any{"x": 0.0, "y": 4.0},
				"radius": 8.0,
			},
		},
	}
	effects, ok := transformEffects(node)
	require.True(t, ok)
	assert.Contains(t, effects.BoxShadow, "rgba(0, 0, 0, 0.25)")
}

func TestTransformEffectsNoneSurviving(t *testing.T) {
	node := RawNode{"effects": []any{
		map[string]any{"type": "DROP_SHADOW", "visible": false},
	}}
	_, ok := transformEffects(node)
	assert.False(t, ok)
}

func TestTransformTextStyle(t *testing.T) {
	style := RawNode{
		"fontFamily":                "Inter",
		"fontWeight":                600.0,
		"fontSize":                  16.0,
		"lineHeightPercentFontSize": 150.0,
		"letterSpacing":             2.0,
	}
	ts, ok := transformTextStyle(style)
	require.True(t, ok)
	assert.Equal(t, "Inter", ts.FontFamily)
	assert.Equal(t, "1.5em", ts.LineHeight)
	assert.Equal(t, "2%", ts.LetterSpacing)
}

func TestTransformTextStyleEmptyStyleIsAbsent(t *testing.T) {
	_, ok := transformTextStyle(RawNode{})
	assert.False(t, ok)
}

func TestTransformLayoutRowMode(t *testing.T) {
	node := RawNode{
		"layoutMode":            "HORIZONTAL",
		"primaryAxisAlignItems": "CENTER",
		"itemSpacing":           8.0,
		"paddingTop":            4.0, "paddingRight": 4.0, "paddingBottom": 4.0, "paddingLeft": 4.0,
	}
	l := transformLayout(node, RawNode{}, false, false)
	assert.Equal(t, "row", l.Mode)
	assert.Equal(t, "center", l.JustifyContent)
	assert.Equal(t, "8px", l.Gap)
	assert.Equal(t, "4px", l.Padding)
}

func TestFilterLayoutDropsBareNone(t *testing.T) {
	_, ok := filterLayout(Layout{Mode: "none"})
	assert.False(t, ok)
}

func TestFilterLayoutKeepsOnlySlotFields(t *testing.T) {
	l := Layout{
		Mode: "row", JustifyContent: "center", Gap: "8px",
		Sizing: &Sizing{Horizontal: "fill"},
	}
	filtered, ok := filterLayout(l)
	require.True(t, ok)
	assert.Nil(t, filtered.Sizing, "sizing is not part of the interned slot subset")
}

func TestBorderRadiusUniformVsPerCorner(t *testing.T) {
	assert.Equal(t, "4px", borderRadius(RawNode{"cornerRadius": 4.0}))
	assert.Equal(t, "", borderRadius(RawNode{"cornerRadius": 0.0}))

	mixed := RawNode{"rectangleCornerRadii": []any{1.0, 2.0, 3.0, 4.0}}
	assert.Equal(t, "1px 2px 3px 4px", borderRadius(mixed))

	uniform := RawNode{"rectangleCornerRadii": []any{2.0, 2.0, 2.0, 2.0}}
	assert.Equal(t, "2px", borderRadius(uniform))
}
