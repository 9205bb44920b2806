package ui

import (
	"image"
	"path/filepath"
	"strings"

	"gift-box/internal/card"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// CardOverlay is the greeting card shown after the box opens: a panel with the card image,
// the greeting set in the drawn font, the font name, and a download button.
// Classes: .card, .card-image, .card-greeting, .card-font, and #download for the button.
type CardOverlay struct {
	panel    *Node
	image    *Node
	greeting *Node
	fontName *Node
	download *Node

	font   rl.Font
	loaded bool
}

func NewCardOverlay() *CardOverlay {
	o := &CardOverlay{
		panel:    NewNode("panel", "card", "", ""),
		image:    NewNode("image", "card-image", "", ""),
		greeting: NewNode("label", "card-greeting", "", ""),
		fontName: NewNode("label", "card-font", "", ""),
		download: NewNode("button", "card-button", "download", "Download Font"),
	}
	o.setHidden(true)
	return o
}

// Nodes returns the overlay nodes in draw order.
func (o *CardOverlay) Nodes() []*Node {
	return []*Node{o.panel, o.image, o.greeting, o.fontName, o.download}
}

// Load uploads the card image and font to the GPU. img may be nil when the card has no image;
// fontPath may be empty. raylib only loads TTF and OTF, so other formats fall back to the
// engine font. Call after the window exists.
func (o *CardOverlay) Load(c card.Card, img image.Image, fontPath string) {
	o.Unload()
	o.greeting.Text = c.Greeting
	o.fontName.Text = ""
	o.download.Hidden = true
	if c.HasFont() {
		o.fontName.Text = "Font: " + c.Font.Name
	}
	if img != nil {
		rlImg := rl.NewImageFromImage(img)
		o.image.Texture = rl.LoadTextureFromImage(rlImg)
		rl.UnloadImage(rlImg)
	}
	if fontPath != "" && rasterFont(fontPath) {
		if f := rl.LoadFontEx(fontPath, 48, nil); f.Texture.ID != 0 {
			o.font = f
			o.greeting.Font = &o.font
		}
	}
	o.loaded = true
}

func rasterFont(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// Show toggles the overlay. The download button only appears for a card that has a font.
func (o *CardOverlay) Show(visible bool, hasFont bool) {
	o.setHidden(!visible || !o.loaded)
	o.download.Hidden = o.download.Hidden || !hasFont
}

func (o *CardOverlay) setHidden(hidden bool) {
	for _, n := range o.Nodes() {
		n.Hidden = hidden
	}
}

// ButtonHit reports whether a click at screen (x, y) lands on the visible download button.
func (o *CardOverlay) ButtonHit(x, y float32) bool {
	return o.download.Contains(x, y)
}

// Unload releases the texture and font of the current card.
func (o *CardOverlay) Unload() {
	if o.image.Texture.ID != 0 {
		rl.UnloadTexture(o.image.Texture)
		o.image.Texture = rl.Texture2D{}
	}
	if o.font.Texture.ID != 0 {
		rl.UnloadFont(o.font)
		o.font = rl.Font{}
	}
	o.greeting.Font = nil
	o.loaded = false
}
