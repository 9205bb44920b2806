package googlefonts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL lists the OFL families in the google/fonts GitHub tree.
const DefaultBaseURL = "https://api.github.com/repos/google/fonts/contents/ofl"

// Only these hosts are used; no user-supplied URLs.
const allowedRawPrefix = "https://raw.githubusercontent.com/google/fonts/"

// ErrNotFound is returned when no family folder or font file matches.
var ErrNotFound = errors.New("google fonts: not found")

type githubFile struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	DownloadURL string `json:"download_url"`
}

// Client looks up font files. The zero value uses DefaultBaseURL and a 15s timeout.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 15 * time.Second}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	return DefaultBaseURL
}

// NormalizeFamily converts a display name to a folder name used in google/fonts ofl.
// e.g. "Inter" -> "inter", "Mountains of Christmas" -> "mountainsofchristmas", then "mountains-of-christmas".
func NormalizeFamily(name string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	noSpaces := strings.ReplaceAll(lower, " ", "")
	withHyphens := strings.ReplaceAll(lower, " ", "-")
	out := []string{noSpaces}
	if withHyphens != noSpaces {
		out = append(out, withHyphens)
	}
	return out
}

// FetchDownloadURL returns the raw download URL for a font file in the given folder.
// Prefers web fonts, then upright TTF/OTF, then italics. Only returns URLs from google/fonts.
func (c *Client) FetchDownloadURL(ctx context.Context, folder string) (downloadURL string, err error) {
	u := c.baseURL() + "/" + url.PathEscape(folder)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: family %q", ErrNotFound, folder)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google fonts: HTTP %d", resp.StatusCode)
	}
	var files []githubFile
	if err := json.NewDecoder(resp.Body).Decode(&files); err != nil {
		return "", fmt.Errorf("google fonts: %w", err)
	}
	var web, upright, italic string
	for _, f := range files {
		if f.Type != "file" || f.DownloadURL == "" || !strings.HasPrefix(f.DownloadURL, allowedRawPrefix) {
			continue
		}
		lower := strings.ToLower(f.Name)
		switch {
		case strings.HasSuffix(lower, ".woff") || strings.HasSuffix(lower, ".woff2"):
			if web == "" && !strings.Contains(lower, "italic") {
				web = f.DownloadURL
			}
		case strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf"):
			if strings.Contains(lower, "italic") {
				if italic == "" {
					italic = f.DownloadURL
				}
			} else if upright == "" {
				upright = f.DownloadURL
			}
		}
	}
	for _, u := range []string{web, upright, italic} {
		if u != "" {
			return u, nil
		}
	}
	return "", fmt.Errorf("%w: no font file for %q", ErrNotFound, folder)
}

// FetchDownloadURLByFamily tries NormalizeFamily(name) variants and returns the first successful download URL.
func (c *Client) FetchDownloadURLByFamily(ctx context.Context, name string) (downloadURL string, err error) {
	candidates := NormalizeFamily(name)
	if len(candidates) == 0 {
		return "", fmt.Errorf("google fonts: invalid font name %q", name)
	}
	var lastErr error
	for _, folder := range candidates {
		u, err := c.FetchDownloadURL(ctx, folder)
		if err == nil {
			return u, nil
		}
		if ctx.Err() != nil {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}
