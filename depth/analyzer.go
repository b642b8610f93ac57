// Package depth implements the analyze_figma_depth tool: a cost estimator
// that walks a raw Figma document and reports, per depth level, how many
// nodes live there and roughly how many characters they'd cost once
// simplified and serialized.
package depth

import (
	"fmt"
	"sort"
	"strings"
)

const (
	charsPerStyleBlock = 200
	charsPerFill       = 100
	charsPerEffect     = 150

	tokensPerChar   = 0.25
	sizeCharFactor  = 1.2 * 0.8
	sampleLimit     = 3
	recommendShare  = 0.80
)

// levelStats accumulates what's been seen at one depth.
type levelStats struct {
	depth     int
	nodeCount int
	chars     int
	samples   []sample
}

type sample struct {
	Type string
	Name string
}

// Report is the human-readable output of Analyze.
type Report struct {
	MaxDepth        int
	TotalNodes      int
	EstimatedChars  int
	EstimatedKB     float64
	EstimatedTokens int
	RecommendedDepth int
	Levels          []LevelReport
}

// LevelReport is one row of the per-depth table.
type LevelReport struct {
	Depth          int
	NodeCount      int
	CumulativeNodes int
	CumulativePct  float64
	Chars          int
	CumulativeChars int
	Samples        []sample
}

// rawNode is a minimal view over a decoded Figma node; depth analysis reads
// only the handful of keys it needs directly off the map, the same way the
// simplifier's RawNode does.
type rawNode map[string]any

func (n rawNode) str(key string) string {
	v, _ := n[key].(string)
	return v
}

func (n rawNode) visible() bool {
	if v, ok := n["visible"].(bool); ok {
		return v
	}
	return true
}

func (n rawNode) children() []rawNode {
	raw, ok := n["children"].([]any)
	if !ok {
		return nil
	}
	out := make([]rawNode, 0, len(raw))
	for _, c := range raw {
		if m, ok := c.(map[string]any); ok {
			out = append(out, rawNode(m))
		}
	}
	return out
}

// Analyze walks the raw document rooted at the given Figma API response
// (either a full-file "document" root or a node-endpoint "nodes" map) and
// produces a Report.
func Analyze(raw map[string]any) (*Report, error) {
	levels := map[int]*levelStats{}
	var maxDepth int

	walk := func(root rawNode) {
		var visit func(n rawNode, depth int)
		visit = func(n rawNode, depth int) {
			if !n.visible() {
				return
			}
			if depth > maxDepth {
				maxDepth = depth
			}
			ls, ok := levels[depth]
			if !ok {
				ls = &levelStats{depth: depth}
				levels[depth] = ls
			}
			ls.nodeCount++
			ls.chars += estimateChars(n)
			if len(ls.samples) < sampleLimit {
				ls.samples = append(ls.samples, sample{Type: n.str("type"), Name: n.str("name")})
			}
			for _, c := range n.children() {
				visit(c, depth+1)
			}
		}
		visit(root, 0)
	}

	if nodesMap, ok := raw["nodes"].(map[string]any); ok {
		for _, entry := range nodesMap {
			entryObj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			doc, ok := rawNode(entryObj)["document"].(map[string]any)
			if !ok {
				continue
			}
			walk(rawNode(doc))
		}
	} else if doc, ok := raw["document"].(map[string]any); ok {
		walk(rawNode(doc))
	} else {
		return nil, fmt.Errorf("depth: malformed response: no document or nodes root")
	}

	depthsSeen := make([]int, 0, len(levels))
	for d := range levels {
		depthsSeen = append(depthsSeen, d)
	}
	sort.Ints(depthsSeen)

	totalNodes := 0
	totalChars := 0
	for _, d := range depthsSeen {
		totalNodes += levels[d].nodeCount
		totalChars += levels[d].chars
	}

	report := &Report{
		MaxDepth:        maxDepth,
		TotalNodes:      totalNodes,
		EstimatedChars:  totalChars,
		EstimatedKB:     float64(totalChars) * sizeCharFactor / 1024,
		EstimatedTokens: int(float64(totalChars) * tokensPerChar),
	}

	cumNodes, cumChars := 0, 0
	recommended := maxDepth
	recommendedSet := false
	for _, d := range depthsSeen {
		ls := levels[d]
		cumNodes += ls.nodeCount
		cumChars += ls.chars
		pct := 0.0
		if totalNodes > 0 {
			pct = float64(cumNodes) / float64(totalNodes)
		}
		report.Levels = append(report.Levels, LevelReport{
			Depth:           d,
			NodeCount:       ls.nodeCount,
			CumulativeNodes: cumNodes,
			CumulativePct:   pct,
			Chars:           ls.chars,
			CumulativeChars: cumChars,
			Samples:         ls.samples,
		})
		if !recommendedSet && pct >= recommendShare {
			recommended = d
			recommendedSet = true
		}
	}
	report.RecommendedDepth = recommended

	return report, nil
}

// estimateChars approximates the serialized-output cost of one node:
// id+name+type lengths, plus a flat cost per style-bearing block present
// on the node, plus any text characters.
func estimateChars(n rawNode) int {
	c := len(n.str("id")) + len(n.str("name")) + len(n.str("type"))
	if _, ok := n["style"].(map[string]any); ok {
		c += charsPerStyleBlock
	}
	if fills, ok := n["fills"].([]any); ok {
		c += len(fills) * charsPerFill
	}
	if effects, ok := n["effects"].([]any); ok {
		c += len(effects) * charsPerEffect
	}
	c += len(n.str("characters"))
	return c
}

// String renders the report as the human-readable text the tool returns.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "max depth: %d, total nodes: %d\n", r.MaxDepth, r.TotalNodes)
	fmt.Fprintf(&b, "estimated size: %.1f KB (%d tokens)\n", r.EstimatedKB, r.EstimatedTokens)
	fmt.Fprintf(&b, "recommended depth: %d\n\n", r.RecommendedDepth)
	fmt.Fprintf(&b, "%-6s%-10s%-8s%-10s%-8s%s\n", "depth", "nodes", "cum%", "chars", "cumCh", "samples")
	for _, lvl := range r.Levels {
		names := make([]string, 0, len(lvl.Samples))
		for _, s := range lvl.Samples {
			names = append(names, fmt.Sprintf("%s:%s", s.Type, s.Name))
		}
		fmt.Fprintf(&b, "%-6d%-10d%-8.1f%-10d%-8d%s\n",
			lvl.Depth, lvl.NodeCount, lvl.CumulativePct*100, lvl.Chars, lvl.CumulativeChars, strings.Join(names, ", "))
	}
	return b.String()
}
