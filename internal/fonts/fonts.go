package fonts

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
)

// Exts are the font file extensions served to the card, in the order formats are preferred.
var Exts = []string{".woff", ".woff2", ".ttf", ".otf"}

// IsFontFile reports whether path has one of Exts.
func IsFontFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Exts {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanDir returns relative paths of all font files under dir (e.g. "Inter/Inter-Regular.woff").
// Paths use forward slashes. A missing dir yields no paths and no error.
func ScanDir(dir string) ([]string, error) {
	var out []string
	dir = filepath.Clean(dir)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || !IsFontFile(path) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out, err
}

var folder = cases.Fold()

// normalizeForMatch case-folds and removes spaces, dashes, and underscores for fuzzy matching.
func normalizeForMatch(s string) string {
	s = folder.String(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}

// FindFontIn searches dirs for a font file whose path matches the search term.
// search can be a name like "Inter", "Mountains of Christmas", or a partial path like "Inter-Regular".
// When multiple files match, prefers one whose path contains "Regular".
func FindFontIn(dirs []string, search string) (relPath string, fullPath string, err error) {
	norm := normalizeForMatch(search)
	if norm == "" {
		return "", "", os.ErrNotExist
	}
	var candidates []struct{ rel, full string }
	for _, base := range dirs {
		list, walkErr := ScanDir(base)
		if walkErr != nil || len(list) == 0 {
			continue
		}
		for _, rel := range list {
			if strings.Contains(normalizeForMatch(rel), norm) {
				full := filepath.Join(base, filepath.FromSlash(rel))
				if _, err := os.Stat(full); err == nil {
					candidates = append(candidates, struct{ rel, full string }{rel, full})
				}
			}
		}
	}
	if len(candidates) == 0 {
		return "", "", os.ErrNotExist
	}
	for _, c := range candidates {
		if strings.Contains(folder.String(c.rel), "regular") {
			return c.rel, c.full, nil
		}
	}
	return candidates[0].rel, candidates[0].full, nil
}

// familySpecialCases keep their second hyphenated word in the family name ("Nord-Book" -> "Nord Book").
var familySpecialCases = []string{"Ace", "Butler", "Cleon", "Dalmation", "ETC", "Mixy", "MollySans", "Nord", "Roxborough"}

var styleWords = []string{"Bold", "Italic", "Light", "Regular", "Medium", "Thin", "Black", "Heavy", "Semi"}

// BaseName folds a font file name into the family folder it belongs to:
// "Lobster-BoldItalic.woff" -> "Lobster", "Nord-Book.woff2" -> "Nord Book".
func BaseName(file string) string {
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	parts := strings.Split(name, "-")
	base := strings.TrimSpace(parts[0])
	for _, special := range familySpecialCases {
		if strings.Contains(base, special) {
			end := 2
			if len(parts) < end {
				end = len(parts)
			}
			base = strings.TrimSpace(strings.Join(parts[:end], " "))
			break
		}
	}
	for _, w := range styleWords {
		base = strings.TrimSpace(strings.ReplaceAll(base, w, ""))
	}
	return base
}
