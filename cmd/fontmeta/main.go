// Command fontmeta fills a fonts directory and writes its font_metadata.json.
//
//	fontmeta -dir assets/fonts -fetch "Lobster, Pacifico"
//
// Each fetched family is looked up in the google/fonts tree, downloaded, and unpacked into
// <dir>/<family>/. The directory is then scanned and the metadata index rewritten.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"

	"gift-box/internal/archive"
	"gift-box/internal/download"
	"gift-box/internal/fonts"
	"gift-box/internal/googlefonts"
	"gift-box/internal/logger"

	"golang.org/x/sync/errgroup"
)

// fetchParallel is how many families are downloaded at once.
const fetchParallel = 4

func main() {
	dir := flag.String("dir", "assets/fonts", "fonts directory")
	fetch := flag.String("fetch", "", "comma-separated Google Fonts families to download first")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := logger.NewAt(filepath.Join("logs", "fontmeta.txt"))
	if err := run(ctx, *dir, splitFamilies(*fetch), log); err != nil {
		fmt.Fprintln(os.Stderr, "fontmeta:", err)
		os.Exit(1)
	}
}

func splitFamilies(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func run(ctx context.Context, dir string, families []string, log *logger.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if len(families) > 0 {
		failed := fetchAll(ctx, dir, families, log)
		for _, f := range failed {
			fmt.Fprintf(os.Stderr, "fontmeta: %s not installed\n", f)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	list, err := fonts.Generate(dir)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, fonts.MetadataFile)
	if err := fonts.SaveMetadata(out, list); err != nil {
		return err
	}
	log.Logf("[FontMeta] wrote %d fonts to %s", len(list), out)
	fmt.Printf("wrote %d fonts to %s\n", len(list), out)
	return nil
}

// fetchAll installs every family it can and returns the names that failed.
func fetchAll(ctx context.Context, dir string, families []string, log *logger.Logger) []string {
	client := &googlefonts.Client{}
	tmp, err := os.MkdirTemp("", "fontmeta-")
	if err != nil {
		log.Logf("[FontMeta] temp dir: %v", err)
		return families
	}
	defer os.RemoveAll(tmp)

	var (
		mu     sync.Mutex
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchParallel)
	for _, family := range families {
		g.Go(func() error {
			if err := install(gctx, client, family, tmp, dir); err != nil {
				log.Logf("[FontMeta] %s: %v", family, err)
				mu.Lock()
				failed = append(failed, family)
				mu.Unlock()
				return nil
			}
			log.Logf("[FontMeta] installed %s", family)
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

// install downloads one family into tmp and moves its font files under dir.
func install(ctx context.Context, client *googlefonts.Client, family, tmp, dir string) error {
	url, err := client.FetchDownloadURLByFamily(ctx, family)
	if err != nil {
		return err
	}
	saved, err := download.Download(ctx, url, tmp)
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(saved), ".zip") {
		files, err := archive.UnzipFonts(saved, dir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("%s: %w", filepath.Base(saved), fonts.ErrNoFonts)
		}
		return nil
	}
	if !fonts.IsFontFile(saved) {
		return fmt.Errorf("%s is not a font file", filepath.Base(saved))
	}
	base := filepath.Base(saved)
	dest := filepath.Join(dir, fonts.BaseName(base))
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	return moveFile(saved, filepath.Join(dest, base))
}

// moveFile renames, falling back to copy and remove when src and dst are on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return err
	}
	return os.Remove(src)
}
