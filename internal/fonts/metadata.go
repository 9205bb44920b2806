package fonts

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/sync/errgroup"
)

// MetadataFile is the index written next to the fonts and served by /api/fonts.
const MetadataFile = "font_metadata.json"

// ErrNoFonts is returned by Random for an empty list.
var ErrNoFonts = errors.New("fonts: no fonts")

// Metadata describes one servable font file.
type Metadata struct {
	Name   string `json:"name"`
	File   string `json:"file"`
	Format string `json:"format"`
	Family string `json:"family,omitempty"`
}

// Generate walks root and describes every font file under it. Name is the file stem, File the
// slash-separated path relative to root. Family comes from the name table of TTF/OTF files and is
// empty for web fonts.
func Generate(root string) ([]Metadata, error) {
	files, err := ScanDir(root)
	if err != nil {
		return nil, fmt.Errorf("fonts: scan %s: %w", root, err)
	}
	out := make([]Metadata, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, rel := range files {
		g.Go(func() error {
			m := describe(rel)
			if m.Format == "ttf" || m.Format == "otf" {
				family, err := Family(filepath.Join(root, filepath.FromSlash(rel)))
				if err != nil {
					return err
				}
				m.Family = family
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func describe(rel string) Metadata {
	return Metadata{
		Name:   strings.TrimSuffix(path.Base(rel), path.Ext(rel)),
		File:   rel,
		Format: strings.TrimPrefix(strings.ToLower(path.Ext(rel)), "."),
	}
}

// Lookup finds the font under root matching search (see FindFontIn) and returns its entry from
// list. A file missing from list is described from its path alone.
func Lookup(root string, list []Metadata, search string) (Metadata, error) {
	rel, _, err := FindFontIn([]string{root}, search)
	if err != nil {
		return Metadata{}, fmt.Errorf("fonts: no font matching %q in %s: %w", search, root, err)
	}
	for _, m := range list {
		if m.File == rel {
			return m, nil
		}
	}
	return describe(rel), nil
}

// Family reads the family name from a TTF or OTF file.
func Family(file string) (string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("fonts: %w", err)
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", fmt.Errorf("fonts: parse %s: %w", file, err)
	}
	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", fmt.Errorf("fonts: family of %s: %w", file, err)
	}
	return name, nil
}

// LoadMetadata reads a metadata index. A missing file returns an error satisfying os.IsNotExist.
func LoadMetadata(file string) ([]Metadata, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var list []Metadata
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("fonts: parse %s: %w", file, err)
	}
	return list, nil
}

// SaveMetadata writes list as indented JSON.
func SaveMetadata(file string, list []Metadata) error {
	if list == nil {
		list = []Metadata{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("fonts: %w", err)
	}
	return os.WriteFile(file, data, 0644)
}

// Random picks one font uniformly.
func Random(rng *rand.Rand, list []Metadata) (Metadata, error) {
	if len(list) == 0 {
		return Metadata{}, ErrNoFonts
	}
	return list[rng.Intn(len(list))], nil
}

// URL is where the API serves a font file.
func URL(file string) string {
	return "/fonts/" + strings.TrimPrefix(file, "/")
}
