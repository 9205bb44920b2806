package giftbox

import (
	"errors"
	"fmt"
	"strings"

	"gift-box/internal/config"
	"gift-box/internal/physics"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrMissingPart is returned by ResolveParts when a named node is absent from the model.
var ErrMissingPart = errors.New("giftbox: missing part")

// Node is one named piece of the box geometry and the pose the renderer draws it at.
type Node struct {
	Name        string
	Offset      mgl32.Vec3 // center relative to the box origin while joined
	HalfExtents mgl32.Vec3
	Color       string

	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// SetPose writes the visual pose.
func (n *Node) SetPose(pos mgl32.Vec3, rot mgl32.Quat) {
	n.Position = pos
	n.Rotation = rot
}

// place puts the node where it sits on a box with the given pose.
func (n *Node) place(box physics.Pose) {
	n.SetPose(box.Position.Add(box.Rotation.Rotate(n.Offset)), box.Rotation)
}

// Model is the loaded box geometry: nodes in draw order, addressable by name.
type Model struct {
	nodes  []*Node
	byName map[string]*Node
}

// NewModel builds nodes from configured parts. Later duplicates of a name shadow earlier ones.
func NewModel(parts []config.Part) *Model {
	m := &Model{byName: make(map[string]*Node, len(parts))}
	for _, p := range parts {
		n := &Node{
			Name:        p.Name,
			Offset:      mgl32.Vec3(p.Offset),
			HalfExtents: mgl32.Vec3(p.HalfExtents),
			Color:       p.Color,
			Rotation:    mgl32.QuatIdent(),
		}
		m.nodes = append(m.nodes, n)
		m.byName[n.Name] = n
	}
	return m
}

// Lookup returns the node called name.
func (m *Model) Lookup(name string) (*Node, bool) {
	n, ok := m.byName[name]
	return n, ok
}

// Nodes returns the nodes in draw order.
func (m *Model) Nodes() []*Node {
	return m.nodes
}

// Parts are the two nodes that split apart. Both are nil when resolution failed.
type Parts struct {
	Cover *Node
	Base  *Node
}

// Found reports whether both parts resolved.
func (p Parts) Found() bool {
	return p.Cover != nil && p.Base != nil
}

// ResolveParts maps the logical cover and base to model nodes once, at load.
func ResolveParts(m *Model, coverName, baseName string) (Parts, error) {
	cover, okCover := m.Lookup(coverName)
	base, okBase := m.Lookup(baseName)
	if okCover && okBase {
		return Parts{Cover: cover, Base: base}, nil
	}
	var missing []string
	if !okCover {
		missing = append(missing, coverName)
	}
	if !okBase {
		missing = append(missing, baseName)
	}
	return Parts{}, fmt.Errorf("%w: %s", ErrMissingPart, strings.Join(missing, ", "))
}
