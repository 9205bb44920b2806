// Package card builds the holiday card revealed after the gift box opens.
package card

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gift-box/internal/fonts"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/anthonynsimon/bild/transform"
)

// DefaultDelay is how long the card waits after opening before it shows.
const DefaultDelay = 500 * time.Millisecond

// Greetings are the lines a card can carry.
var Greetings = []string{
	"Wishing you much joy this holiday season!",
	"I wish you a Merry Christmas!",
	"HO HO HOLIDAYS!",
	"Happy Holidays!",
	"Season's Greetings!",
	"Joy to your world!",
	"Warmest winter wishes!",
	"Celebrate the magic!",
	"Cheers to the season!",
	"Holiday happiness to you!",
}

// ErrNoFont is returned by SaveFont for a card drawn without a font.
var ErrNoFont = errors.New("card: no font")

// Card is one drawn card. Font is the zero Metadata when no fonts were available.
type Card struct {
	Greeting string
	Image    string
	Font     fonts.Metadata
	DrawnAt  time.Time
	Delay    time.Duration
}

// Draw picks an image, a greeting and a font at random. Empty lists leave the field empty.
func Draw(rng *rand.Rand, images, greetings []string, fontList []fonts.Metadata, now time.Time, delay time.Duration) Card {
	c := Card{DrawnAt: now, Delay: delay}
	if len(images) > 0 {
		c.Image = images[rng.Intn(len(images))]
	}
	if len(greetings) > 0 {
		c.Greeting = greetings[rng.Intn(len(greetings))]
	}
	if f, err := fonts.Random(rng, fontList); err == nil {
		c.Font = f
	}
	return c
}

// Visible reports whether the reveal delay has passed.
func (c Card) Visible(now time.Time) bool {
	return !now.Before(c.DrawnAt.Add(c.Delay))
}

// HasFont reports whether the card carries a downloadable font. Without one the default typeface is used.
func (c Card) HasFont() bool {
	return c.Font.File != ""
}

// PrepareImage loads card artwork and scales it to fit inside w×h, keeping its aspect ratio.
func PrepareImage(path string, w, h int) (image.Image, error) {
	img, err := imgio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("card: open %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("card: bad size %dx%d -> %dx%d", b.Dx(), b.Dy(), w, h)
	}
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	tw := max(1, int(math.Round(float64(b.Dx())*scale)))
	th := max(1, int(math.Round(float64(b.Dy())*scale)))
	return transform.Resize(img, tw, th, transform.Linear), nil
}

// SaveFont copies the card's font file from fontsDir into destDir and returns the new path.
func SaveFont(fontsDir string, font fonts.Metadata, destDir string) (string, error) {
	if font.File == "" {
		return "", ErrNoFont
	}
	rel := filepath.Clean(filepath.FromSlash(font.File))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("card: font path %q escapes %s", font.File, fontsDir)
	}
	src, err := os.Open(filepath.Join(fontsDir, rel))
	if err != nil {
		return "", fmt.Errorf("card: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("card: %w", err)
	}
	dest := filepath.Join(destDir, filepath.Base(rel))
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("card: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dest)
		return "", fmt.Errorf("card: copy font: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("card: %w", err)
	}
	return dest, nil
}

// DownloadDir is where SaveFont puts fonts for the user: ~/Downloads, or the working directory
// when there is no home.
func DownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
