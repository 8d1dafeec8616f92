package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/klauspost/compress/zstd"

	"blockview/internal/geometry"
)

// Frame is the wire form of a populated context handed to viewers.
type Frame struct {
	Author     string          `json:"author,omitempty"`
	Name       string          `json:"name,omitempty"`
	Materials  []MaterialFrame `json:"materials"`
	Meshes     []MeshFrame     `json:"meshes"`
	Connectors []ConnFrame     `json:"connectors"`
}

type MaterialFrame struct {
	Texture string `json:"texture"`
	URL     string `json:"url"`
	Ready   bool   `json:"ready"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// GeometryFrame describes a box. UVs is only present when a face was
// remapped; otherwise the viewer uses full-tile defaults.
type GeometryFrame struct {
	Size [3]float32 `json:"size"`
	UVs  []float32  `json:"uvs,omitempty"`
}

type MeshFrame struct {
	Geometry GeometryFrame `json:"geometry"`
	Material string        `json:"material"`
	Position [3]float32    `json:"position"`
	// Rotation is a quaternion as [x, y, z, w].
	Rotation [4]float32 `json:"rotation"`
}

type ConnFrame struct {
	Side     string        `json:"side"`
	Geometry GeometryFrame `json:"geometry"`
	Material string        `json:"material"`
	Position [3]float32    `json:"position"`
}

// Export snapshots the context. baseURL prefixes texture paths so that a
// browser viewer can fetch them.
func (c *Context) Export(baseURL string) Frame {
	f := Frame{
		Author:     c.meta.Author,
		Name:       c.meta.Name,
		Materials:  make([]MaterialFrame, 0, len(c.materials)),
		Meshes:     make([]MeshFrame, 0, len(c.meshes)),
		Connectors: make([]ConnFrame, 0, len(c.connectors)),
	}
	for _, p := range c.Materials() {
		m := c.materials[p]
		mf := MaterialFrame{Texture: p, URL: TextureURL(baseURL, p)}
		if m.Handle != nil && m.Handle.Ready() {
			mf.Ready = m.Handle.Err() == nil
			mf.Width, mf.Height = m.Handle.Size()
		}
		f.Materials = append(f.Materials, mf)
	}
	for _, m := range c.meshes {
		q := m.Transform.Rotation
		f.Meshes = append(f.Meshes, MeshFrame{
			Geometry: geometryFrame(m.Geometry),
			Material: m.Material.Texture,
			Position: vecArray(m.Transform.Position),
			Rotation: [4]float32{q.V[0], q.V[1], q.V[2], q.W},
		})
	}
	for _, cn := range c.connectors {
		f.Connectors = append(f.Connectors, ConnFrame{
			Side:     string(cn.Side),
			Geometry: geometryFrame(cn.Geometry),
			Material: cn.Material.Texture,
			Position: vecArray(cn.Position),
		})
	}
	return f
}

// TextureURL joins a base URL and a texture path unless the path already
// carries the base.
func TextureURL(baseURL, p string) string {
	base := strings.Trim(baseURL, "/")
	p = strings.TrimPrefix(p, "/")
	if base == "" {
		return "/" + p
	}
	if strings.HasPrefix(p, base+"/") {
		return "/" + p
	}
	return "/" + base + "/" + p
}

func geometryFrame(b *geometry.Box) GeometryFrame {
	g := GeometryFrame{Size: vecArray(b.Size)}
	if b.UVsNeedUpdate {
		g.UVs = append([]float32(nil), b.UVs[:]...)
	}
	return g
}

func vecArray(v mgl32.Vec3) [3]float32 {
	return [3]float32{v[0], v[1], v[2]}
}

// WriteFrame encodes f as JSON, zstd-compressed when compress is set.
func WriteFrame(w io.Writer, f Frame, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(f)
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if err := json.NewEncoder(enc).Encode(f); err != nil {
		_ = enc.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	return enc.Close()
}

// ReadFrame decodes a frame written by WriteFrame.
func ReadFrame(r io.Reader, compressed bool) (Frame, error) {
	var f Frame
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return f, err
		}
		defer dec.Close()
		r = dec
	}
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return f, fmt.Errorf("decode frame: %w", err)
	}
	return f, nil
}
