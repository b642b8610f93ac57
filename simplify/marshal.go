package simplify

import "encoding/json"

// nodeWire is the on-the-wire shape of a SimplifiedNode: identical to the
// struct but with the style slots resolved to plain values so the
// StyleSlot/set-once machinery never leaks into the serialized form.
type nodeWire struct {
	ID                  string              `json:"id" yaml:"id"`
	Name                string              `json:"name" yaml:"name"`
	Type                string              `json:"type" yaml:"type"`
	Text                string              `json:"text,omitempty" yaml:"text,omitempty"`
	Opacity             *float64            `json:"opacity,omitempty" yaml:"opacity,omitempty"`
	BorderRadius        string              `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
	ComponentID         string              `json:"componentId,omitempty" yaml:"componentId,omitempty"`
	ComponentProperties []ComponentProperty `json:"componentProperties,omitempty" yaml:"componentProperties,omitempty"`
	TextStyle           any                 `json:"textStyle,omitempty" yaml:"textStyle,omitempty"`
	Fills               any                 `json:"fills,omitempty" yaml:"fills,omitempty"`
	Strokes             any                 `json:"strokes,omitempty" yaml:"strokes,omitempty"`
	Effects             any                 `json:"effects,omitempty" yaml:"effects,omitempty"`
	Layout              any                 `json:"layout,omitempty" yaml:"layout,omitempty"`
	Children            []*SimplifiedNode   `json:"children,omitempty" yaml:"children,omitempty"`
}

func (n *SimplifiedNode) wire() nodeWire {
	slot := func(s StyleSlot) any {
		if !s.Present() {
			return nil
		}
		if s.IsRef() {
			return string(s.ID())
		}
		return s.Value()
	}
	return nodeWire{
		ID:                  n.ID,
		Name:                n.Name,
		Type:                n.Type,
		Text:                n.Text,
		Opacity:             n.Opacity,
		BorderRadius:        n.BorderRadius,
		ComponentID:         n.ComponentID,
		ComponentProperties: n.ComponentProperties,
		TextStyle:           slot(n.TextStyle),
		Fills:               slot(n.Fills),
		Strokes:             slot(n.Strokes),
		Effects:             slot(n.Effects),
		Layout:              slot(n.Layout),
		Children:            n.Children,
	}
}

// MarshalJSON emits the wire shape: style slots become either the
// referenced StyleID string or the inlined literal, never both.
func (n *SimplifiedNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.wire())
}

// MarshalYAML mirrors MarshalJSON for the yaml.v3 encoder used by the
// output package's default format.
func (n *SimplifiedNode) MarshalYAML() (any, error) {
	return n.wire(), nil
}
