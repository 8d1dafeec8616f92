package blockmodel

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic is the frame header of a zstd stream.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Loader reads model documents from <assetsPath>/models and caches them by
// name. Documents may be stored plain (.json) or zstd-compressed (.json.zst).
type Loader struct {
	assetsPath string

	mu         sync.RWMutex
	modelCache map[string]*Document
}

func NewLoader(assetsPath string) *Loader {
	return &Loader{
		assetsPath: assetsPath,
		modelCache: make(map[string]*Document),
	}
}

// LoadModel returns the named document, reading it on first use.
func (l *Loader) LoadModel(name string) (*Document, error) {
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".zst"), ".json")

	l.mu.RLock()
	doc, ok := l.modelCache[name]
	l.mu.RUnlock()
	if ok {
		return doc, nil
	}

	base := filepath.Join(l.assetsPath, "models", filepath.FromSlash(name))
	var (
		data []byte
		err  error
	)
	for _, ext := range []string{".json", ".json.zst"} {
		data, err = os.ReadFile(base + ext)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}

	doc, err = Decode(data)
	if err != nil {
		return nil, fmt.Errorf("could not load model '%s': %w", name, err)
	}

	l.mu.Lock()
	l.modelCache[name] = doc
	l.mu.Unlock()
	return doc, nil
}

// Invalidate drops a cached document so the next LoadModel rereads it.
func (l *Loader) Invalidate(name string) {
	name = strings.TrimSuffix(strings.TrimSuffix(name, ".zst"), ".json")
	l.mu.Lock()
	delete(l.modelCache, name)
	l.mu.Unlock()
}

// LoadFile reads a document from an explicit path without caching.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read model file: %w", err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("could not load model %s: %w", path, err)
	}
	return doc, nil
}

// Decode parses a document, decompressing it first when it is a zstd frame.
func Decode(data []byte) (*Document, error) {
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("could not decompress model: %w", err)
		}
	}
	return Parse(data)
}
