package card

import (
	"errors"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gift-box/internal/fonts"

	"github.com/anthonynsimon/bild/imgio"
)

func TestDraw(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	now := time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)
	images := []string{"a.png", "b.png"}
	list := []fonts.Metadata{{Name: "Lobster-Regular", File: "Lobster/Lobster-Regular.woff", Format: "woff"}}

	c := Draw(rng, images, Greetings, list, now, DefaultDelay)
	if c.Image != "a.png" && c.Image != "b.png" {
		t.Errorf("Image = %q", c.Image)
	}
	found := false
	for _, g := range Greetings {
		if g == c.Greeting {
			found = true
		}
	}
	if !found {
		t.Errorf("Greeting = %q, not one of Greetings", c.Greeting)
	}
	if !c.HasFont() || c.Font != list[0] {
		t.Errorf("Font = %+v, want %+v", c.Font, list[0])
	}

	bare := Draw(rng, nil, nil, nil, now, DefaultDelay)
	if bare.HasFont() || bare.Image != "" || bare.Greeting != "" {
		t.Errorf("Draw with empty lists = %+v", bare)
	}
}

func TestVisible(t *testing.T) {
	now := time.Date(2024, 12, 24, 20, 0, 0, 0, time.UTC)
	c := Card{DrawnAt: now, Delay: DefaultDelay}
	tests := []struct {
		after time.Duration
		want  bool
	}{
		{0, false},
		{499 * time.Millisecond, false},
		{500 * time.Millisecond, true},
		{2 * time.Second, true},
	}
	for _, tt := range tests {
		if got := c.Visible(now.Add(tt.after)); got != tt.want {
			t.Errorf("Visible(+%v) = %v, want %v", tt.after, got, tt.want)
		}
	}
}

func TestPrepareImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "card.png")
	if err := imgio.Save(path, src, imgio.PNGEncoder()); err != nil {
		t.Fatal(err)
	}

	img, err := PrepareImage(path, 450, 600)
	if err != nil {
		t.Fatalf("PrepareImage() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 450 || b.Dy() != 225 {
		t.Errorf("bounds = %v, want 450x225", b)
	}

	if _, err := PrepareImage(filepath.Join(t.TempDir(), "none.png"), 450, 600); err == nil {
		t.Error("PrepareImage() of a missing file succeeded")
	}
}

func TestSaveFont(t *testing.T) {
	fontsDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(fontsDir, "Lobster"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fontsDir, "Lobster", "Lobster-Regular.woff"), []byte("wOFF"), 0644); err != nil {
		t.Fatal(err)
	}
	dest := filepath.Join(t.TempDir(), "Downloads")

	got, err := SaveFont(fontsDir, fonts.Metadata{File: "Lobster/Lobster-Regular.woff"}, dest)
	if err != nil {
		t.Fatalf("SaveFont() error = %v", err)
	}
	if want := filepath.Join(dest, "Lobster-Regular.woff"); got != want {
		t.Errorf("SaveFont() = %q, want %q", got, want)
	}
	if data, err := os.ReadFile(got); err != nil || string(data) != "wOFF" {
		t.Errorf("saved content = %q, %v", data, err)
	}

	if _, err := SaveFont(fontsDir, fonts.Metadata{}, dest); !errors.Is(err, ErrNoFont) {
		t.Errorf("SaveFont(no font) error = %v, want ErrNoFont", err)
	}
	if _, err := SaveFont(fontsDir, fonts.Metadata{File: "../secret.woff"}, dest); err == nil {
		t.Error("SaveFont() accepted a path outside the fonts dir")
	}
}
