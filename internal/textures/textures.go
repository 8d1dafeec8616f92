// Package textures decodes texture resources in the background and caches
// them by path.
package textures

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrClosed is returned by Request after Close.
var ErrClosed = errors.New("textures: cache closed")

// Handle is a texture that may still be decoding.
type Handle struct {
	Path string

	done chan struct{}
	img  *image.RGBA
	err  error
}

// Ready reports whether decoding finished, successfully or not.
func (h *Handle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until decoding finishes or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Image returns the decoded pixels, or nil while loading or after a failure.
func (h *Handle) Image() *image.RGBA {
	if !h.Ready() {
		return nil
	}
	return h.img
}

// Size returns the decoded dimensions, or zeros while loading.
func (h *Handle) Size() (width, height int) {
	img := h.Image()
	if img == nil {
		return 0, 0
	}
	s := img.Rect.Size()
	return s.X, s.Y
}

// Err returns the decode error once Ready.
func (h *Handle) Err() error {
	if !h.Ready() {
		return nil
	}
	return h.err
}

// Cache resolves texture paths under a root directory. Paths may carry a
// URL prefix (for example "/textures/") which is stripped first.
type Cache struct {
	root    string
	baseURL string

	mu      sync.Mutex
	entries map[string]*Handle
	// refs counts outstanding Requests per path.
	refs   map[string]int
	closed bool
	wg     sync.WaitGroup
}

func NewCache(root, baseURL string) *Cache {
	return &Cache{
		root:    root,
		baseURL: strings.Trim(baseURL, "/"),
		entries: make(map[string]*Handle),
		refs:    make(map[string]int),
	}
}

// Resolve maps a texture path from a model document to a file path.
func (c *Cache) Resolve(p string) string {
	p = strings.TrimPrefix(p, "/")
	if c.baseURL != "" {
		p = strings.TrimPrefix(p, c.baseURL+"/")
	}
	return filepath.Join(c.root, filepath.FromSlash(path.Clean("/" + p)))
}

// Request returns the handle for p, starting a decode on first use. Each
// path is decoded at most once while cached. Every successful Request must
// be paired with one Release.
func (c *Cache) Request(p string) (*Handle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	c.refs[p]++
	if h, ok := c.entries[p]; ok {
		return h, nil
	}

	h := &Handle{Path: p, done: make(chan struct{})}
	c.entries[p] = h
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(h.done)
		h.img, h.err = load(c.Resolve(p))
	}()
	return h, nil
}

// Release drops one reference to p. The entry is forgotten once no
// references remain, so a later Request decodes it again.
func (c *Cache) Release(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.refs[p]
	if !ok {
		return
	}
	if n > 1 {
		c.refs[p] = n - 1
		return
	}
	delete(c.refs, p)
	delete(c.entries, p)
}

// Len returns the number of cached handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close waits for in-flight decodes and drops every handle.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	clear(c.entries)
	clear(c.refs)
	c.mu.Unlock()
}

func load(file string) (*image.RGBA, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture file: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", file, err)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
