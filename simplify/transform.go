package simplify

import (
	"fmt"
	"math"
	"strings"
)

// pixelEpsilon biases pixel rounding away from the exact .5 boundary so
// repeated round-trips of the same design value don't flap between two
// adjacent integers.
const pixelEpsilon = 1e-6

func pixelRound(v float64) float64 {
	return math.Round(v + pixelEpsilon)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// toHex converts a Figma color object (r,g,b in [0,1]) to "#RRGGBB".
func toHex(color RawNode) string {
	r, _ := color.num("r")
	g, _ := color.num("g")
	b, _ := color.num("b")
	ri := int(math.Round(r * 255))
	gi := int(math.Round(g * 255))
	bi := int(math.Round(b * 255))
	return fmt.Sprintf("#%02X%02X%02X", ri, gi, bi)
}

// colorOpacity computes round(colorAlpha * paintOpacity, 2).
func colorOpacity(color RawNode, paintOpacity float64) float64 {
	a, ok := color.num("a")
	if !ok {
		a = 1
	}
	return round2(a * paintOpacity)
}

// transformFill converts one Figma paint into the simplified Fill variant.
// Returns false if the paint is not visible (transformers never fail; an
// invisible paint is simply "no value").
func transformFill(paint RawNode) (Fill, bool) {
	if visible, ok := paint.boolean("visible"); ok && !visible {
		return Fill{}, false
	}

	opacity := 1.0
	if o, ok := paint.num("opacity"); ok {
		opacity = o
	}

	switch paint.typ() {
	case "SOLID":
		color, _ := paint.obj("color")
		return Fill{
			Type:    "SOLID",
			Hex:     toHex(color),
			Opacity: colorOpacity(color, opacity),
		}, true

	case "IMAGE":
		return Fill{
			Type:      "IMAGE",
			ImageRef:  paint.str("imageRef"),
			ScaleMode: paint.str("scaleMode"),
		}, true

	case "GRADIENT_LINEAR", "GRADIENT_RADIAL", "GRADIENT_ANGULAR", "GRADIENT_DIAMOND":
		f := Fill{Type: paint.typ()}
		for _, h := range paint.arr("gradientHandlePositions") {
			if m, ok := h.(map[string]any); ok {
				hn := RawNode(m)
				x, _ := hn.num("x")
				y, _ := hn.num("y")
				f.GradientHandlePositions = append(f.GradientHandlePositions, Point{X: x, Y: y})
			}
		}
		for _, s := range paint.arr("gradientStops") {
			m, ok := s.(map[string]any)
			if !ok {
				continue
			}
			sn := RawNode(m)
			pos, _ := sn.num("position")
			color, _ := sn.obj("color")
			f.GradientStops = append(f.GradientStops, GradientStop{
				Position: round2(pos),
				Hex:      toHex(color),
				Opacity:  colorOpacity(color, 1.0),
			})
		}
		return f, true

	default:
		return Fill{}, false
	}
}

// transformFills converts a node's "fills" array, dropping invisible paints.
func transformFills(node RawNode) []Fill {
	var out []Fill
	for _, raw := range node.arr("fills") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if f, ok := transformFill(RawNode(m)); ok {
			out = append(out, f)
		}
	}
	return out
}

// transformStrokes builds the simplified Stroke from a node's "strokes"
// array plus its weight fields.
func transformStrokes(node RawNode) (Stroke, bool) {
	var colors []Fill
	for _, raw := range node.arr("strokes") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if f, ok := transformFill(RawNode(m)); ok {
			colors = append(colors, f)
		}
	}
	if len(colors) == 0 {
		return Stroke{}, false
	}

	s := Stroke{Colors: colors}

	if w, ok := node.num("strokeWeight"); ok && w > 0 {
		s.StrokeWeight = fmt.Sprintf("%gpx", pixelRound(w))
	} else if top, hasTop := node.num("strokeTopWeight"); hasTop {
		right, _ := node.num("strokeRightWeight")
		bottom, _ := node.num("strokeBottomWeight")
		left, _ := node.num("strokeLeftWeight")
		s.StrokeWeight = cssShorthand(top, right, bottom, left)
	}

	if dashes := node.arr("dashPattern"); len(dashes) > 0 {
		for _, d := range dashes {
			if f, ok := d.(float64); ok {
				s.StrokeDashes = append(s.StrokeDashes, f)
			}
		}
	}

	return s, true
}

// cssShorthand collapses a top/right/bottom/left quad to the shortest
// equivalent CSS shorthand form.
func cssShorthand(top, right, bottom, left float64) string {
	px := func(v float64) string { return fmt.Sprintf("%gpx", pixelRound(v)) }
	switch {
	case top == right && right == bottom && bottom == left:
		return px(top)
	case top == bottom && right == left:
		return fmt.Sprintf("%s %s", px(top), px(right))
	case right == left:
		return fmt.Sprintf("%s %s %s", px(top), px(right), px(bottom))
	default:
		return fmt.Sprintf("%s %s %s %s", px(top), px(right), px(bottom), px(left))
	}
}

// transformEffects rolls a node's visible shadow/blur effects into the
// CSS-flavored Effects struct. Returns false if nothing survives.
func transformEffects(node RawNode) (Effects, bool) {
	var boxShadows []string
	var e Effects

	for _, raw := range node.arr("effects") {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		eff := RawNode(m)
		if visible, ok := eff.boolean("visible"); ok && !visible {
			continue
		}

		switch eff.typ() {
		case "DROP_SHADOW", "INNER_SHADOW":
			color, _ := eff.obj("color")
			offset, _ := eff.obj("offset")
			ox, _ := offset.num("x")
			oy, _ := offset.num("y")
			radius, _ := eff.num("radius")
			spread, _ := eff.num("spread")
			r, _ := color.num("r")
			g, _ := color.num("g")
			b, _ := color.num("b")
			a, _ := color.num("a")
			rgba := fmt.Sprintf("rgba(%d, %d, %d, %s)",
				int(math.Round(r*255)), int(math.Round(g*255)), int(math.Round(b*255)),
				trimFloat(round2(a)))
			shadow := fmt.Sprintf("%gpx %gpx %gpx %gpx %s",
				pixelRound(ox), pixelRound(oy), pixelRound(radius), pixelRound(spread), rgba)
			if eff.typ() == "INNER_SHADOW" {
				shadow = "inset " + shadow
			}
			boxShadows = append(boxShadows, shadow)

		case "LAYER_BLUR":
			radius, _ := eff.num("radius")
			e.Filter = fmt.Sprintf("blur(%gpx)", pixelRound(radius))

		case "BACKGROUND_BLUR":
			radius, _ := eff.num("radius")
			e.BackdropFilter = fmt.Sprintf("blur(%gpx)", pixelRound(radius))
		}
	}

	if len(boxShadows) > 0 {
		e.BoxShadow = strings.Join(boxShadows, ", ")
	}

	if e.BoxShadow == "" && e.Filter == "" && e.BackdropFilter == "" {
		return Effects{}, false
	}
	return e, true
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "0"
	}
	return s
}

// transformTextStyle converts a TEXT node's "style" object.
func transformTextStyle(style RawNode) (TextStyle, bool) {
	if len(style) == 0 {
		return TextStyle{}, false
	}
	t := TextStyle{
		FontFamily: style.str("fontFamily"),
	}
	if w, ok := style.num("fontWeight"); ok {
		t.FontWeight = w
	}
	if s, ok := style.num("fontSize"); ok {
		t.FontSize = s
	}
	if lh, ok := style.num("lineHeightPercentFontSize"); ok {
		t.LineHeight = fmt.Sprintf("%sem", trimFloat(round2(lh/100)))
	} else if lhPx, ok := style.num("lineHeightPx"); ok {
		if size, ok := style.num("fontSize"); ok && size > 0 {
			t.LineHeight = fmt.Sprintf("%sem", trimFloat(round2(lhPx/size)))
		}
	}
	if ls, ok := style.num("letterSpacing"); ok {
		t.LetterSpacing = fmt.Sprintf("%s%%", trimFloat(round2(ls)))
	}
	t.TextCase = style.str("textCase")
	t.TextAlignHorizontal = style.str("textAlignHorizontal")
	t.TextAlignVertical = style.str("textAlignVertical")
	return t, true
}

var justifyMap = map[string]string{
	"MIN":           "",
	"MAX":           "flex-end",
	"CENTER":        "center",
	"SPACE_BETWEEN": "space-between",
	"BASELINE":      "baseline",
}

var alignSelfMap = map[string]string{
	"STRETCH": "stretch",
	"MAX":     "flex-end",
	"CENTER":  "center",
}

// transformLayout builds the full layout description; the caller
// (GraphSimplifier) is responsible for filtering it down to the
// slot-level subset before interning.
func transformLayout(node RawNode, parent RawNode, hasParent bool, parentIsAutoLayout bool) Layout {
	l := Layout{Mode: "none"}

	switch node.str("layoutMode") {
	case "HORIZONTAL":
		l.Mode = "row"
	case "VERTICAL":
		l.Mode = "column"
	}

	if v, ok := node["primaryAxisAlignItems"].(string); ok {
		l.JustifyContent = justifyMap[v]
	}
	if v, ok := node["counterAxisAlignItems"].(string); ok {
		l.AlignItems = justifyMap[v]
	}

	allChildrenStretch := allChildrenFillOrAbsolute(node, l.Mode)
	if l.Mode != "none" && allChildrenStretch {
		if l.AlignItems == "" {
			l.AlignItems = "stretch"
		}
	}

	if v, ok := node["layoutAlign"].(string); ok {
		l.AlignSelf = alignSelfMap[v]
	}

	if gap, ok := node.num("itemSpacing"); ok && gap > 0 {
		l.Gap = fmt.Sprintf("%gpx", pixelRound(gap))
	}

	top, _ := node.num("paddingTop")
	right, _ := node.num("paddingRight")
	bottom, _ := node.num("paddingBottom")
	left, _ := node.num("paddingLeft")
	if top != 0 || right != 0 || bottom != 0 || left != 0 {
		l.Padding = cssShorthand(top, right, bottom, left)
	}

	if wrap, ok := node.boolean("layoutWrap"); ok && wrap {
		l.Wrap = true
	}

	horiz := node.str("layoutSizingHorizontal")
	vert := node.str("layoutSizingVertical")
	if horiz != "" || vert != "" {
		l.Sizing = &Sizing{
			Horizontal: sizingTerm(horiz),
			Vertical:   sizingTerm(vert),
		}
	}

	isAbsolute := node.str("layoutPositioning") == "ABSOLUTE"
	if isAbsolute {
		l.Position = "absolute"
	}

	box, hasBox := node.obj("absoluteBoundingBox")
	if hasBox {
		growsH := parentIsAutoLayout && horiz == "FILL"
		growsV := parentIsAutoLayout && vert == "FILL"
		w, _ := box.num("width")
		h, _ := box.num("height")
		var dims Dims
		any := false
		if !growsH {
			dims.Width = pixelRound(w)
			any = true
		}
		if !growsV {
			dims.Height = pixelRound(h)
			any = true
		}
		if preserve, ok := node.boolean("preserveRatio"); ok && preserve && l.Mode == "column" && h != 0 {
			dims.AspectRatio = round2(w / h)
			any = true
		}
		if any {
			l.Dimensions = &dims
		}

		if hasParent && (!parentIsAutoLayout || isAbsolute) {
			pBox, ok := parent.obj("absoluteBoundingBox")
			if ok {
				px, _ := pBox.num("x")
				py, _ := pBox.num("y")
				nx, _ := box.num("x")
				ny, _ := box.num("y")
				l.LocationRelativeToParent = &Point{
					X: pixelRound(nx - px),
					Y: pixelRound(ny - py),
				}
			}
		}
	}

	var scroll []string
	switch node.str("overflowDirection") {
	case "HORIZONTAL_SCROLLING":
		scroll = []string{"x"}
	case "VERTICAL_SCROLLING":
		scroll = []string{"y"}
	case "HORIZONTAL_AND_VERTICAL_SCROLLING":
		scroll = []string{"x", "y"}
	}
	l.OverflowScroll = scroll

	removeEmptyLayout(&l)
	return l
}

func sizingTerm(v string) string {
	switch v {
	case "FIXED":
		return "fixed"
	case "FILL":
		return "fill"
	case "HUG":
		return "hug"
	default:
		return ""
	}
}

// allChildrenFillOrAbsolute reports whether every child of node is either
// absolutely positioned or fill-sized on the counter axis, the condition
// under which justify/align on that axis upgrades to "stretch".
func allChildrenFillOrAbsolute(node RawNode, mode string) bool {
	children := node.children()
	if len(children) == 0 {
		return false
	}
	counterSizing := "layoutSizingVertical"
	if mode == "column" {
		counterSizing = "layoutSizingHorizontal"
	}
	for _, c := range children {
		if c.str("layoutPositioning") == "ABSOLUTE" {
			continue
		}
		if c.str(counterSizing) == "FILL" {
			continue
		}
		return false
	}
	return true
}

// filterLayout keeps only the slot-level subset (mode, justifyContent,
// alignItems, gap, padding, wrap), returning false if nothing but a bare
// "none" mode survives.
func filterLayout(l Layout) (Layout, bool) {
	filtered := Layout{
		Mode:           l.Mode,
		JustifyContent: l.JustifyContent,
		AlignItems:     l.AlignItems,
		Gap:            l.Gap,
		Padding:        l.Padding,
		Wrap:           l.Wrap,
	}
	if filtered.Mode == "none" && filtered.JustifyContent == "" && filtered.AlignItems == "" &&
		filtered.Gap == "" && filtered.Padding == "" && !filtered.Wrap {
		return Layout{}, false
	}
	return filtered, true
}

// borderRadius renders a node's corner radii as a length string: a single
// value when uniform, or a four-value shorthand per corner.
func borderRadius(node RawNode) string {
	if r, ok := node.num("cornerRadius"); ok && r != 0 {
		return fmt.Sprintf("%gpx", pixelRound(r))
	}
	radii := node.arr("rectangleCornerRadii")
	if len(radii) != 4 {
		return ""
	}
	vals := make([]float64, 4)
	allZero := true
	for i, r := range radii {
		f, _ := r.(float64)
		vals[i] = f
		if f != 0 {
			allZero = false
		}
	}
	if allZero {
		return ""
	}
	if vals[0] == vals[1] && vals[1] == vals[2] && vals[2] == vals[3] {
		return fmt.Sprintf("%gpx", pixelRound(vals[0]))
	}
	return fmt.Sprintf("%gpx %gpx %gpx %gpx",
		pixelRound(vals[0]), pixelRound(vals[1]), pixelRound(vals[2]), pixelRound(vals[3]))
}
