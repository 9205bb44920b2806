package ui

import (
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const defaultFontSize = 20

// Engine holds the current stylesheet and nodes, and draws them with raylib in node order.
// Resolved styles are cached until the sheet or the node list changes.
// Text uses the font from LoadFont, a node's own Font, or raylib's default font.
type Engine struct {
	sheet        *Stylesheet
	nodes        []*Node
	cachedStyles []ComputedStyle
	cacheValid   bool
	font         rl.Font
}

// New creates an empty UI engine (no stylesheet, no nodes).
func New() *Engine {
	return &Engine{}
}

// LoadCSS loads and parses a CSS file from path. Replaces the current stylesheet.
func (e *Engine) LoadCSS(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	sheet, err := ParseCSS(string(data))
	if err != nil {
		return err
	}
	e.sheet = sheet
	e.cacheValid = false
	return nil
}

// SetStylesheet sets the stylesheet directly.
func (e *Engine) SetStylesheet(sheet *Stylesheet) {
	e.sheet = sheet
	e.cacheValid = false
}

// LoadFont loads a TTF/OTF font from path. If loading fails, the engine keeps its current font.
// Call after the window exists.
func (e *Engine) LoadFont(path string) error {
	f := rl.LoadFont(path)
	if f.Texture.ID == 0 {
		return os.ErrNotExist
	}
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
	}
	e.font = f
	return nil
}

// Font returns the font from LoadFont, or the zero font (raylib default) when none is loaded.
func (e *Engine) Font() rl.Font {
	return e.font
}

// AddNode appends a node. Nodes are drawn in order.
func (e *Engine) AddNode(n *Node) {
	e.nodes = append(e.nodes, n)
	e.cacheValid = false
}

// SetNodes replaces all nodes.
func (e *Engine) SetNodes(nodes []*Node) {
	e.nodes = nodes
	e.cacheValid = false
}

// resolveProps returns merged properties for a node (class and id matched; last wins).
func (e *Engine) resolveProps(n *Node) map[string]string {
	merged := make(map[string]string)
	if e.sheet == nil {
		return merged
	}
	for _, rule := range e.sheet.Rules {
		sel := rule.Selector
		matches := false
		if len(sel) > 0 && sel[0] == '.' {
			class := sel[1:]
			if n.Class == class {
				matches = true
			}
		} else if len(sel) > 0 && sel[0] == '#' {
			id := sel[1:]
			if n.ID == id {
				matches = true
			}
		}
		if matches {
			for k, v := range rule.Props {
				merged[k] = v
			}
		}
	}
	return merged
}

// resolveBounds sets the node size from style. A zero style size keeps the node's own size.
func resolveBounds(n *Node, style ComputedStyle) {
	if style.Width > 0 {
		n.Bounds.Width = float32(style.Width)
	}
	if style.Height > 0 {
		n.Bounds.Height = float32(style.Height)
	}
}

// Draw draws all nodes: for each node, resolve style (cached), place it, then draw background, border,
// texture, and text. The placed rectangle is written back to n.Bounds.
func (e *Engine) Draw() {
	screenW := int32(rl.GetScreenWidth())
	screenH := int32(rl.GetScreenHeight())
	if !e.cacheValid {
		e.cachedStyles = make([]ComputedStyle, len(e.nodes))
		for i, n := range e.nodes {
			e.cachedStyles[i] = ResolveProps(e.resolveProps(n))
			resolveBounds(n, e.cachedStyles[i])
		}
		e.cacheValid = true
	}
	for i, n := range e.nodes {
		if n.Hidden {
			continue
		}
		style := e.cachedStyles[i]
		w := int32(n.Bounds.Width)
		h := int32(n.Bounds.Height)
		x := style.Left
		y := style.Top
		if style.LeftPct >= 0 {
			x = (screenW - w) * style.LeftPct / 100
		}
		if style.TopPct >= 0 {
			y = (screenH - h) * style.TopPct / 100
		}
		rect := rl.NewRectangle(float32(x), float32(y), float32(w), float32(h))
		n.Bounds = rect

		if style.Background.A > 0 {
			if style.Radius > 0 {
				rl.DrawRectangleRounded(rect, style.Radius, 8, style.Background)
			} else {
				rl.DrawRectangle(x, y, w, h, style.Background)
			}
		}
		if style.HasBorder && w > 0 && h > 0 {
			if style.Radius > 0 {
				rl.DrawRectangleRoundedLinesEx(rect, style.Radius, 8, 1, style.Border)
			} else {
				rl.DrawRectangleLines(x, y, w, h, style.Border)
			}
		}
		if n.Texture.ID != 0 {
			src := rl.NewRectangle(0, 0, float32(n.Texture.Width), float32(n.Texture.Height))
			dst := rl.NewRectangle(rect.X+(rect.Width-src.Width)/2, rect.Y+(rect.Height-src.Height)/2, src.Width, src.Height)
			rl.DrawTexturePro(n.Texture, src, dst, rl.NewVector2(0, 0), 0, rl.White)
		}
		if n.Text != "" {
			e.drawText(n, style, rect)
		}
	}
}

func (e *Engine) drawText(n *Node, style ComputedStyle, rect rl.Rectangle) {
	font := e.font
	if n.Font != nil && n.Font.Texture.ID != 0 {
		font = *n.Font
	}
	size := float32(style.FontSize)
	pad := float32(style.Padding)
	pos := rl.NewVector2(rect.X+pad, rect.Y+pad)
	if font.Texture.ID == 0 {
		if style.Center {
			tw := float32(rl.MeasureText(n.Text, style.FontSize))
			pos.X = rect.X + (rect.Width-tw)/2
			pos.Y = rect.Y + (rect.Height-size)/2
		}
		rl.DrawText(n.Text, int32(pos.X), int32(pos.Y), style.FontSize, style.Color)
		return
	}
	if style.Center {
		m := rl.MeasureTextEx(font, n.Text, size, 1)
		pos.X = rect.X + (rect.Width-m.X)/2
		pos.Y = rect.Y + (rect.Height-m.Y)/2
	}
	rl.DrawTextEx(font, n.Text, pos, size, 1, style.Color)
}

// Unload releases the engine font.
func (e *Engine) Unload() {
	if e.font.Texture.ID != 0 {
		rl.UnloadFont(e.font)
		e.font = rl.Font{}
	}
}

// HasStylesheet returns whether a CSS file has been loaded.
func (e *Engine) HasStylesheet() bool {
	return e.sheet != nil && len(e.sheet.Rules) > 0
}

// Stylesheet returns the current stylesheet (may be nil).
func (e *Engine) Stylesheet() *Stylesheet {
	return e.sheet
}
