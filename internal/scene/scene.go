// Package scene holds the rendering context that receives assembled
// descriptors. A Context is created, populated by a walk and disposed; it
// replaces any process-wide scene state.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"blockview/internal/assembly"
	"blockview/internal/textures"
	"blockview/pkg/blockmodel"
)

// ErrDisposed is returned when a disposed context is populated again.
var ErrDisposed = errors.New("scene: context disposed")

// Material is a texture shared by every descriptor that references it.
type Material struct {
	Texture string
	// Texture pixels, possibly still decoding. Nil when the context has no
	// texture cache or the request failed.
	Handle *textures.Handle
	// Users counts the meshes and connectors referencing the material.
	Users int
}

// Context owns the descriptors of one populated model.
type Context struct {
	textures *textures.Cache

	meta       Meta
	meshes     []assembly.Mesh
	connectors []assembly.Connector
	materials  map[string]*Material
	// texErr joins texture requests refused during Populate.
	texErr   error
	disposed bool
}

// Meta is informational document metadata.
type Meta struct {
	Author string
	Name   string
}

// New creates an empty context. tex may be nil, in which case materials
// carry no texture handles.
func New(tex *textures.Cache) *Context {
	return &Context{
		textures:  tex,
		materials: make(map[string]*Material),
	}
}

// Populate walks doc into the context. Textures the cache refuses (for
// example after Close) leave their materials untextured and are reported
// through the returned error; the descriptors are still registered.
func (c *Context) Populate(doc *blockmodel.Document, w *assembly.Walker) (assembly.Report, error) {
	if c.disposed {
		return assembly.Report{}, ErrDisposed
	}
	if w == nil {
		w = &assembly.Walker{}
	}
	c.meta = Meta{Author: doc.Author, Name: doc.Name}
	c.texErr = nil
	rep := w.Walk(doc, c)
	if c.texErr != nil {
		return rep, fmt.Errorf("request textures: %w", c.texErr)
	}
	return rep, nil
}

// AddMesh registers a mesh descriptor. It panics after Dispose.
func (c *Context) AddMesh(m assembly.Mesh) {
	c.mustBeLive()
	c.material(m.Material.Texture)
	c.meshes = append(c.meshes, m)
}

// AddConnector registers a connector descriptor. It panics after Dispose.
func (c *Context) AddConnector(cn assembly.Connector) {
	c.mustBeLive()
	c.material(cn.Material.Texture)
	c.connectors = append(c.connectors, cn)
}

func (c *Context) mustBeLive() {
	if c.disposed {
		panic(ErrDisposed)
	}
}

func (c *Context) material(path string) *Material {
	if m, ok := c.materials[path]; ok {
		m.Users++
		return m
	}
	m := &Material{Texture: path, Users: 1}
	if c.textures != nil {
		h, err := c.textures.Request(path)
		if err != nil {
			c.texErr = errors.Join(c.texErr, fmt.Errorf("%s: %w", path, err))
		}
		m.Handle = h
	}
	c.materials[path] = m
	return m
}

func (c *Context) Meta() Meta { return c.meta }

// Meshes returns the registered mesh descriptors in walk order.
func (c *Context) Meshes() []assembly.Mesh { return c.meshes }

// Connectors returns the registered connector descriptors in walk order.
func (c *Context) Connectors() []assembly.Connector { return c.connectors }

// Material returns the shared material for a texture path.
func (c *Context) Material(path string) (*Material, bool) {
	m, ok := c.materials[path]
	return m, ok
}

// Materials returns the texture paths in use, sorted.
func (c *Context) Materials() []string {
	out := make([]string, 0, len(c.materials))
	for p := range c.materials {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Disposed reports whether Dispose has run.
func (c *Context) Disposed() bool { return c.disposed }

// Dispose releases every material and drops all descriptors. It is safe to
// call more than once.
func (c *Context) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.textures != nil {
		for p, m := range c.materials {
			if m.Handle != nil {
				c.textures.Release(p)
			}
		}
	}
	c.materials = nil
	c.meshes = nil
	c.connectors = nil
}
