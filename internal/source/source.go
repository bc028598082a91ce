package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// MaxBytes caps how much decoded text a source will return.
const MaxBytes = 512 << 20

// Source fetches the raw catalog text.
type Source interface {
	Fetch(ctx context.Context) (string, error)
	Location() string
}

// Options configures Open.
type Options struct {
	BaseURL     string
	BasePath    string
	HTTPTimeout time.Duration
}

// Open picks a Source for loc: absolute http(s) URLs and existing files are
// used as-is; any other path is resolved against BaseURL+BasePath when a base
// URL is configured, and treated as a local file otherwise.
func Open(loc string, opt Options) (Source, error) {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil, ErrEmptyPath
	}
	if isURL(loc) {
		return NewHTTPSource(loc, opt.HTTPTimeout), nil
	}
	if _, err := os.Stat(loc); err == nil {
		return FileSource{Path: loc}, nil
	}
	if opt.BaseURL != "" {
		return NewHTTPSource(Resolve(opt.BaseURL, opt.BasePath, loc), opt.HTTPTimeout), nil
	}
	return FileSource{Path: loc}, nil
}

// Resolve joins a base URL, an optional base path (e.g. "/ExoBengal") and a
// relative catalog path.
func Resolve(baseURL, basePath, rel string) string {
	base := strings.TrimRight(baseURL, "/")
	if bp := strings.Trim(basePath, "/"); bp != "" {
		base += "/" + bp
	}
	if strings.HasPrefix(rel, "/") {
		return base + rel
	}
	return base + "/" + rel
}

func isURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// HTTPSource fetches catalog text over HTTP.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns an HTTPSource with the given client timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Location() string { return s.URL }

// Fetch performs a single GET. Failures are returned as typed errors and are
// not retried.
func (s *HTTPSource) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		var nerr net.Error
		if errors.As(err, &nerr) || errors.Is(err, io.EOF) {
			return "", &UnreachableError{URL: s.URL, Err: err}
		}
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", &StatusError{URL: s.URL, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	return decode(resp.Body)
}

// FileSource reads catalog text from the local filesystem.
type FileSource struct {
	Path string
}

func (s FileSource) Location() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return "", fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return decode(f)
}

// TextSource serves fixed text; useful for embedding and tests.
type TextSource struct {
	Name string
	Text string
}

func (s TextSource) Location() string { return s.Name }

func (s TextSource) Fetch(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// decode sniffs gzip and zstd frames and returns the decompressed text.
func decode(r io.Reader) (string, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4)
	var body io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		zr, err := gzip.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		body = zr
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return "", fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		body = zr
	}
	b, err := io.ReadAll(io.LimitReader(body, MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read catalog: %w", err)
	}
	if len(b) > MaxBytes {
		return "", fmt.Errorf("read catalog: exceeds %d bytes", MaxBytes)
	}
	return string(b), nil
}
