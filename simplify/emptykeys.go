package simplify

// removeEmptyKeysNodes recursively normalizes a simplified node tree so that
// any optional field left as an empty (but non-nil) sequence collapses to
// its zero value: absent rather than present-but-empty on the wire. Safe to
// run more than once.
func removeEmptyKeysNodes(nodes []*SimplifiedNode) {
	for _, n := range nodes {
		if len(n.ComponentProperties) == 0 {
			n.ComponentProperties = nil
		}
		if len(n.Children) == 0 {
			n.Children = nil
		} else {
			removeEmptyKeysNodes(n.Children)
		}
	}
}

// removeEmptyLayout strips a Layout's own empty optional sub-fields; used by
// the transformers before a Layout value is interned so a partially-filled
// struct never gets serialized with empty nested objects.
func removeEmptyLayout(l *Layout) {
	if l.Sizing != nil && l.Sizing.Horizontal == "" && l.Sizing.Vertical == "" {
		l.Sizing = nil
	}
	if l.Dimensions != nil && l.Dimensions.Width == 0 && l.Dimensions.Height == 0 && l.Dimensions.AspectRatio == 0 {
		l.Dimensions = nil
	}
	if len(l.OverflowScroll) == 0 {
		l.OverflowScroll = nil
	}
}
