package simplify

import (
	"sort"
	"strconv"
	"strings"
)

// tableCounter is the per-container bookkeeping StructuralAnalyzer keeps
// while GraphSimplifier walks a node recognized as a table container.
type tableCounter struct {
	rowCount int
	rowsSeen map[string]int
}

// tableContainerThreshold is the child count a node must exceed before it is
// even considered for table detection.
const tableContainerThreshold = 3

// tableSampleSize is how many leading children are sampled to decide whether
// a node is a table container.
const tableSampleSize = 10

// tableRepeatThreshold is how many times a structure signature must repeat
// among the sample for the container to be classified as a table.
const tableRepeatThreshold = 3

// rowKeepLimit is how many rows of a given content signature are kept before
// the rest are dropped and rolled into a SUMMARY node.
const rowKeepLimit = 3

// structureSignature joins, at levels 0..2 only, a node's type, child count,
// and the sorted set of distinct child types, recursing into the first
// three children. Used to detect repeated rows under a candidate table
// container.
func structureSignature(n RawNode) string {
	return structureSignatureAt(n, 0)
}

func structureSignatureAt(n RawNode, level int) string {
	children := n.children()
	var b strings.Builder
	b.WriteString(n.typ())
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(len(children)))

	if level < 2 {
		types := make(map[string]bool)
		for _, c := range children {
			types[c.typ()] = true
		}
		sorted := make([]string, 0, len(types))
		for t := range types {
			sorted = append(sorted, t)
		}
		sort.Strings(sorted)
		b.WriteByte(':')
		b.WriteString(strings.Join(sorted, ","))

		limit := len(children)
		if limit > 3 {
			limit = 3
		}
		for i := 0; i < limit; i++ {
			b.WriteByte('|')
			b.WriteString(structureSignatureAt(children[i], level+1))
		}
	}
	return b.String()
}

// contentSignature is used to deduplicate rows within a detected table: for
// TEXT nodes it's the first 20 characters of the text, for frame/group/
// instance-shaped containers it's "type[childCount]", recursing into the
// first five children. If nothing was emitted at all it falls back to the
// structural signature.
func contentSignature(n RawNode) string {
	sig := contentSignatureAt(n, 0)
	if sig == "" {
		return structureSignature(n)
	}
	return sig
}

func contentSignatureAt(n RawNode, depth int) string {
	var parts []string

	if n.typ() == "TEXT" {
		text := n.str("characters")
		if len(text) > 20 {
			text = text[:20]
		}
		if text != "" {
			parts = append(parts, text)
		}
	} else if t := n.typ(); t == "FRAME" || t == "GROUP" || t == typeInstance {
		parts = append(parts, t+"["+strconv.Itoa(len(n.children()))+"]")
	}

	children := n.children()
	limit := len(children)
	if limit > 5 {
		limit = 5
	}
	for i := 0; i < limit; i++ {
		if s := contentSignatureAt(children[i], depth+1); s != "" {
			parts = append(parts, s)
		}
	}

	return strings.Join(parts, "|")
}

// detectTableContainer reports whether n should be treated as a table
// container: more than three children and, among the first ten, some
// structure signature occurring at least three times.
func detectTableContainer(n RawNode) bool {
	children := n.children()
	if len(children) <= tableContainerThreshold {
		return false
	}

	sample := children
	if len(sample) > tableSampleSize {
		sample = sample[:tableSampleSize]
	}

	counts := make(map[string]int, len(sample))
	for _, c := range sample {
		sig := structureSignature(c)
		counts[sig]++
		if counts[sig] >= tableRepeatThreshold {
			return true
		}
	}
	return false
}

// keepDecision records, for a child encountered under a table container, the
// row-dedup verdict: whether to keep it. Whether a SUMMARY node is appended
// is decided afterwards from droppedCount.
type keepDecision struct {
	keep bool
}

// evaluateRow applies the row dedup policy for one child of a table
// container and returns whether to keep it. The cap is per signature: a row
// type seen many times keeps its first three exemplars and drops the rest,
// while a distinct row type is always kept on first sight regardless of how
// many other rows the container has already produced.
func (tc *tableCounter) evaluateRow(child RawNode) keepDecision {
	if tc.rowsSeen == nil {
		tc.rowsSeen = make(map[string]int)
	}
	sig := contentSignature(child)

	count := tc.rowsSeen[sig]
	if count == 0 {
		tc.rowCount++
	}
	tc.rowsSeen[sig] = count + 1

	return keepDecision{keep: count < rowKeepLimit}
}

// totalRows sums every row's observed occurrence count.
func (tc *tableCounter) totalRows() int {
	total := 0
	for _, c := range tc.rowsSeen {
		total += c
	}
	return total
}

// droppedCount is how many rows were observed beyond each signature's three
// kept exemplars; 0 means no SUMMARY node is needed.
func (tc *tableCounter) droppedCount() int {
	dropped := 0
	for _, c := range tc.rowsSeen {
		if c > rowKeepLimit {
			dropped += c - rowKeepLimit
		}
	}
	return dropped
}
