package simplify

import (
	"fmt"
	"sort"
)

// parentContext tags what kind of container a node's children are being
// recursed under, so row-dedup knows when to apply.
type parentContext struct {
	tableID string // non-empty when inside a detected table container
}

// GraphSimplifier is the recursive traversal that composes StyleInterner,
// StructuralAnalyzer and the Transformers into a SimplifiedDesign. One
// instance is scoped to a single ParseResponse call; it owns no state that
// survives past that call.
type GraphSimplifier struct {
	vars     *GlobalVars
	maxDepth *int
}

// ParseResponse accepts either shape of the upstream Figma response (a
// full-file response with a "document" root, or a node-endpoint response
// with a keyed "nodes" map) and produces a SimplifiedDesign. maxDepth of nil
// means unlimited.
func ParseResponse(raw map[string]any, maxDepth *int) (*SimplifiedDesign, error) {
	root := RawNode(raw)

	g := &GraphSimplifier{
		vars:     newGlobalVars(),
		maxDepth: maxDepth,
	}

	design := &SimplifiedDesign{
		Name:          "Untitled",
		Components:    make(map[string]Component),
		ComponentSets: make(map[string]ComponentSet),
	}
	if name := root.str("name"); name != "" {
		design.Name = name
	}
	design.LastModified = root.str("lastModified")
	design.ThumbnailURL = root.str("thumbnailUrl")

	if nodesMap, ok := raw["nodes"].(map[string]any); ok {
		for _, entry := range nodesMap {
			entryObj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			entryNode := RawNode(entryObj)
			g.mergeComponents(entryNode, design)

			doc, ok := entryNode.obj("document")
			if !ok {
				continue
			}
			if doc.id() == "" || doc.name() == "" || doc.typ() == "" {
				return nil, fmt.Errorf("malformed node document: missing id/name/type")
			}
			simplified := g.parseNode(doc, RawNode{}, false, 0, parentContext{})
			if simplified != nil {
				design.Nodes = append(design.Nodes, simplified)
			}
		}
		g.finish(design)
		return design, nil
	}

	doc, ok := root.obj("document")
	if !ok {
		return nil, fmt.Errorf("malformed response: missing document")
	}
	g.mergeComponents(root, design)

	for _, child := range doc.children() {
		simplified := g.parseNode(child, doc, true, 0, parentContext{})
		if simplified != nil {
			design.Nodes = append(design.Nodes, simplified)
		}
	}

	g.finish(design)
	return design, nil
}

func (g *GraphSimplifier) finish(design *SimplifiedDesign) {
	g.vars.finalize(design.Nodes)
	design.GlobalVars = g.vars
	removeEmptyKeysNodes(design.Nodes)
}

func (g *GraphSimplifier) mergeComponents(root RawNode, design *SimplifiedDesign) {
	if comps, ok := root.obj("components"); ok {
		for id, raw := range comps {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			c := RawNode(m)
			design.Components[id] = Component{
				ID:             id,
				Key:            c.str("key"),
				Name:           c.str("name"),
				ComponentSetID: c.str("componentSetId"),
			}
		}
	}
	if sets, ok := root.obj("componentSets"); ok {
		for id, raw := range sets {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			c := RawNode(m)
			design.ComponentSets[id] = ComponentSet{
				ID:          id,
				Key:         c.str("key"),
				Name:        c.str("name"),
				Description: c.str("description"),
			}
		}
	}
}

// parseNode is the recursive core of the simplification pass.
func (g *GraphSimplifier) parseNode(node, parent RawNode, hasParent bool, depth int, ctx parentContext) *SimplifiedNode {
	// Visibility gate: an invisible node contributes nothing.
	if !node.visible() {
		return nil
	}

	// Depth clamp.
	if g.maxDepth != nil && depth > *g.maxDepth {
		return &SimplifiedNode{
			ID:   "depth_limit_" + node.id(),
			Name: node.name(),
			Type: typeDepthLimit,
			Text: fmt.Sprintf("depth %d exceeds limit %d, subtree omitted", depth, *g.maxDepth),
		}
	}

	originalType := node.typ()
	simplified := &SimplifiedNode{
		ID:   node.id(),
		Name: node.name(),
		Type: originalType,
	}

	if originalType == typeInstance {
		simplified.ComponentID = node.str("componentId")
		if props, ok := node.obj("componentProperties"); ok {
			names := make([]string, 0, len(props))
			for name := range props {
				names = append(names, name)
			}
			// Deterministic order: componentProperties arrives as a JSON
			// object, so sort for stable output across parses.
			sort.Strings(names)
			for _, name := range names {
				m, ok := props[name].(map[string]any)
				if !ok {
					continue
				}
				pn := RawNode(m)
				simplified.ComponentProperties = append(simplified.ComponentProperties, ComponentProperty{
					Name:  name,
					Value: pn["value"],
					Type:  pn.str("type"),
				})
			}
		}
	}

	parentIsAutoLayout := hasParent && parent.str("layoutMode") != "" && parent.str("layoutMode") != "NONE"

	if style, ok := node.obj("style"); ok {
		if ts, ok := transformTextStyle(style); ok {
			simplified.TextStyle = Ref(g.vars.intern(ts, "style"))
		}
	}

	if fills := transformFills(node); len(fills) > 0 {
		var value any = fills
		if len(fills) == 1 {
			value = fills[0]
		}
		simplified.Fills = Ref(g.vars.intern(value, "fill"))
	}

	if stroke, ok := transformStrokes(node); ok {
		simplified.Strokes = Ref(g.vars.intern(stroke, "stroke"))
	}

	if effects, ok := transformEffects(node); ok {
		simplified.Effects = Ref(g.vars.intern(effects, "effect"))
	}

	layout := transformLayout(node, parent, hasParent, parentIsAutoLayout)
	if filtered, ok := filterLayout(layout); ok {
		simplified.Layout = Ref(g.vars.intern(filtered, "layout"))
	}

	if opacity, ok := node.num("opacity"); ok && opacity != 1 {
		v := opacity
		simplified.Opacity = &v
	}

	if br := borderRadius(node); br != "" {
		simplified.BorderRadius = br
	}

	if text := node.str("characters"); text != "" {
		simplified.Text = text
	}

	childCtx := ctx
	isTable := false
	if len(node.children()) > tableContainerThreshold && detectTableContainer(node) {
		isTable = true
		tableID := node.id()
		childCtx = parentContext{tableID: tableID}
		if _, exists := g.vars.tables[tableID]; !exists {
			g.vars.tables[tableID] = &tableCounter{}
		}
	}

	var children []*SimplifiedNode
	var tc *tableCounter
	if isTable {
		tc = g.vars.tables[childCtx.tableID]
	}

	for _, child := range node.children() {
		if !child.visible() {
			continue
		}

		// Wrapper elision: an INSTANCE child with exactly one grandchild is
		// elided; recurse directly into the grandchild with the original
		// child (the INSTANCE) as parent.
		if child.typ() == typeInstance {
			grandchildren := child.children()
			if len(grandchildren) == 1 {
				if tc != nil && !g.tableKeep(tc, child) {
					continue
				}
				simplifiedChild := g.parseNode(grandchildren[0], child, true, depth+1, childCtx)
				if simplifiedChild != nil {
					children = append(children, simplifiedChild)
				}
				continue
			}
		}

		if tc != nil && !g.tableKeep(tc, child) {
			continue
		}

		simplifiedChild := g.parseNode(child, node, true, depth+1, childCtx)
		if simplifiedChild != nil {
			children = append(children, simplifiedChild)
		}
	}

	if tc != nil {
		if dropped := tc.droppedCount(); dropped > 0 {
			children = append(children, &SimplifiedNode{
				ID:   "summary_" + g.vars.nextSummaryID(),
				Name: "Repetitive content summary",
				Type: typeSummary,
				Text: fmt.Sprintf("(Omitted %d similar items out of %d total)", dropped, tc.totalRows()),
			})
		}
	}

	if len(children) > 0 {
		simplified.Children = children
	}

	// VECTOR rewrite happens after recursion: a VECTOR has no subtree to
	// affect, but this keeps the rewrite applied at a single, consistent
	// point in the traversal.
	if originalType == typeVector {
		simplified.Type = typeImageSVG
	}

	return simplified
}

func (g *GraphSimplifier) tableKeep(tc *tableCounter, child RawNode) bool {
	return tc.evaluateRow(child).keep
}

func (g *GlobalVars) nextSummaryID() string {
	g.counter["__summary"]++
	return fmt.Sprintf("%06X", g.counter["__summary"])
}
