package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Node is a single UI element: panel, label, image or button. Class and ID are matched by CSS.
// Bounds holds the on-screen rectangle of the last Draw, so it can be hit tested.
type Node struct {
	Type    string // "panel", "label", "image", "button"
	Class   string
	ID      string
	Bounds  rl.Rectangle
	Text    string
	Texture rl.Texture2D // drawn to fill Bounds when loaded
	Font    *rl.Font     // overrides the engine font for this node
	Hidden  bool
}

// NewNode creates a node with type and optional class, id, and text.
func NewNode(typ, class, id, text string) *Node {
	return &Node{Type: typ, Class: class, ID: id, Text: text}
}

// Contains reports whether the screen point lies in the node's last drawn bounds.
func (n *Node) Contains(x, y float32) bool {
	if n.Hidden {
		return false
	}
	return rl.CheckCollisionPointRec(rl.NewVector2(x, y), n.Bounds)
}
