package texture

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Media describes one asset of the gallery. Width and Height only carry the
// aspect ratio; the decoded texture may be smaller.
type Media struct {
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Aspect returns Width/Height, or 0 when the dimensions are unknown.
func (m Media) Aspect() float32 {
	if m.Width <= 0 || m.Height <= 0 {
		return 0
	}
	return float32(m.Width) / float32(m.Height)
}

// Loader opens the raw bytes behind a media URL.
type Loader interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

type LoaderFunc func(ctx context.Context, url string) (io.ReadCloser, error)

func (f LoaderFunc) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	return f(ctx, url)
}

// FileLoader resolves relative URLs against Root.
type FileLoader struct {
	Root string
}

func (l FileLoader) Open(ctx context.Context, u string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := strings.TrimPrefix(u, "file://")
	if !filepath.IsAbs(p) && l.Root != "" {
		p = filepath.Join(l.Root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open texture %s", u)
	}
	return f, nil
}

type HTTPLoader struct {
	Client *http.Client
}

func (l HTTPLoader) Open(ctx context.Context, u string) (io.ReadCloser, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "texture request %s", u)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch texture %s", u)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("fetch texture %s: %s", u, resp.Status)
	}
	return resp.Body, nil
}

// AutoLoader sends http(s) URLs to HTTP and everything else to Files.
type AutoLoader struct {
	Files FileLoader
	HTTP  HTTPLoader
}

func (l AutoLoader) Open(ctx context.Context, u string) (io.ReadCloser, error) {
	if parsed, err := url.Parse(u); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return l.HTTP.Open(ctx, u)
	}
	return l.Files.Open(ctx, u)
}
