package simplify

import (
	"encoding/json"
	"fmt"
)

// internThreshold is the usage-count cutoff below which finalize inlines a
// style instead of keeping it in GlobalVars.Styles. Not configurable in the
// core; surrounding configuration may expose a different value to callers.
const internThreshold = 3

// intern canonicalizes value, looks it up in the reverse index, and either
// returns the existing id (bumping its usage count) or mints a fresh one.
func (g *GlobalVars) intern(value any, prefix string) StyleID {
	key, err := canonicalKey(value)
	if err != nil {
		// Transformers guard against producing unserializable values; if one
		// slips through we still must not panic mid-traversal, so fall back
		// to a fresh id every time.
		key = fmt.Sprintf("%s:%p", prefix, &value)
	}

	if id, ok := g.lookup[key]; ok {
		g.usageCount[id]++
		return id
	}

	id := g.nextID(prefix)
	g.Styles[id] = value
	g.lookup[key] = id
	g.usageCount[id] = 1
	return id
}

func (g *GlobalVars) nextID(prefix string) StyleID {
	g.counter[prefix]++
	return StyleID(fmt.Sprintf("%s_%06X", prefix, g.counter[prefix]))
}

// canonicalKey produces a stable serialization of value for use as a
// dedup key: encoding/json already emits map keys in sorted order, which is
// all the stability we need as long as callers pixel-round floats before
// building the value (StyleInterner does not re-round on its own).
func canonicalKey(value any) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// finalize inlines every style whose usage count fell below internThreshold,
// replacing its id with the literal value everywhere it's referenced, then
// prunes it from Styles. Called once, after the whole tree has been walked.
func (g *GlobalVars) finalize(nodes []*SimplifiedNode) {
	inline := make(map[StyleID]bool)
	for id, count := range g.usageCount {
		if count < internThreshold {
			inline[id] = true
		}
	}

	var walk func(n *SimplifiedNode)
	walk = func(n *SimplifiedNode) {
		n.TextStyle = g.resolveSlot(n.TextStyle, inline)
		n.Fills = g.resolveSlot(n.Fills, inline)
		n.Strokes = g.resolveSlot(n.Strokes, inline)
		n.Effects = g.resolveSlot(n.Effects, inline)
		n.Layout = g.resolveSlot(n.Layout, inline)
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}

	for id := range inline {
		delete(g.Styles, id)
	}
}

// resolveSlot leaves a reference slot alone unless its id is marked for
// inlining, in which case it swaps in the literal value.
func (g *GlobalVars) resolveSlot(slot StyleSlot, inline map[StyleID]bool) StyleSlot {
	if !slot.set || !slot.IsRef() {
		return slot
	}
	if inline[slot.id] {
		return Inline(g.Styles[slot.id])
	}
	return slot
}
