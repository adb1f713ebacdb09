package scene

import (
	"encoding/json"
	"fmt"

	"github.com/inamate/flip/internal/geometry"
)

// NodeSpec describes a node to build. Layout rects are absolute.
type NodeSpec struct {
	Type     string        `json:"type"`
	FlipID   string        `json:"flipId,omitempty"`
	RootID   string        `json:"rootId,omitempty"`
	Rect     geometry.Rect `json:"rect"`
	BgColor  string        `json:"bg,omitempty"`
	Children []NodeSpec    `json:"children,omitempty"`
}

// Load builds a scene from a JSON NodeSpec tree.
func Load(data []byte) (*Scene, error) {
	var spec NodeSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	s := New()
	s.Build(s.Root(), spec)
	return s, nil
}

// Build adds spec and its subtree under parent.
func (s *Scene) Build(parent *Node, spec NodeSpec) *Node {
	n := s.Add(parent, spec.FlipID, spec.Rect)
	if spec.Type != "" {
		n.Type = spec.Type
	}
	n.RootID = spec.RootID
	n.BgColor = spec.BgColor
	for _, child := range spec.Children {
		s.Build(n, child)
	}
	return n
}

// List returns a vertical list root with one item per FlipID, each item
// height tall and stacked from y = 0.
func List(rootID string, height float64, ids ...string) NodeSpec {
	spec := NodeSpec{
		Type:   "list",
		FlipID: rootID,
		RootID: rootID,
		Rect:   geometry.Rect{Width: 300, Height: height * float64(len(ids))},
	}
	for i, id := range ids {
		spec.Children = append(spec.Children, NodeSpec{
			Type:   "item",
			FlipID: id,
			Rect:   geometry.Rect{Y: height * float64(i), Width: 300, Height: height},
		})
	}
	return spec
}
