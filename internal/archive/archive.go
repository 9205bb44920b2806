package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gift-box/internal/fonts"
)

// UnzipFonts extracts only font files from zipPath, flattening each into
// destDir/<family>/<file> where family is fonts.BaseName of the file.
// destDir is created if needed. Entries that would land outside destDir are skipped.
func UnzipFonts(zipPath, destDir string) (extracted []string, err error) {
	return unzipMapped(zipPath, destDir, func(name string) (string, bool) {
		if !fonts.IsFontFile(name) {
			return "", false
		}
		base := filepath.Base(filepath.FromSlash(name))
		family := fonts.BaseName(base)
		if family == "" {
			return base, true
		}
		return filepath.Join(family, base), true
	})
}

// unzipMapped extracts every entry for which target returns true, at the relative path it returns.
func unzipMapped(zipPath, destDir string, target func(name string) (string, bool)) (extracted []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	defer r.Close()
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	absDir, err := filepath.Abs(destDir)
	if err != nil {
		return nil, fmt.Errorf("unzip: %w", err)
	}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rel, ok := target(f.Name)
		if !ok {
			continue
		}
		dest := filepath.Clean(filepath.Join(destDir, rel))
		absDest, err := filepath.Abs(dest)
		if err != nil {
			return nil, fmt.Errorf("unzip: %w", err)
		}
		if !strings.HasPrefix(absDest, absDir+string(os.PathSeparator)) {
			continue // skip path escape
		}
		if err := extract(f, dest); err != nil {
			return nil, err
		}
		extracted = append(extracted, dest)
	}
	return extracted, nil
}

func extract(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	defer out.Close()
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("unzip: %w", err)
	}
	defer rc.Close()
	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("unzip %s: %w", f.Name, err)
	}
	return nil
}
