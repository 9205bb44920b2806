package ui

import (
	"fmt"

	"gift-box/internal/giftbox"
)

// StatusPanel is a small corner readout of the gift box state, styled by .status and .status-line.
type StatusPanel struct {
	panel  *Node
	state  *Node
	clicks *Node
}

func NewStatusPanel() *StatusPanel {
	return &StatusPanel{
		panel:  NewNode("panel", "status", "", ""),
		state:  NewNode("label", "status-line", "status-state", ""),
		clicks: NewNode("label", "status-line", "status-clicks", ""),
	}
}

// AppendNodes refreshes the labels from snap and appends the panel nodes to dst when visible.
func (p *StatusPanel) AppendNodes(dst []*Node, visible bool, snap giftbox.Snapshot) []*Node {
	if !visible {
		return dst
	}
	p.state.Text = fmt.Sprintf("%s / %s", snap.State, snap.Stage)
	p.clicks.Text = fmt.Sprintf("Clicks: %d", snap.Clicks)
	if snap.Rumbling {
		p.clicks.Text += " (rumbling)"
	}
	return append(dst, p.panel, p.state, p.clicks)
}
