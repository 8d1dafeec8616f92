package geometry

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/pkg/blockmodel"
)

// AtlasTile is the edge length, in pixels, of one atlas tile. UV
// rectangles in model documents are expressed in this pixel space.
const AtlasTile = 16.0

const (
	VerticesPerFace = 4
	FaceCount       = 6
	VertexCount     = VerticesPerFace * FaceCount
	IndexCount      = 6 * FaceCount
)

// Box is an axis-aligned cuboid centred on its local origin. It carries
// 24 vertices (4 per face) so that each face owns its UVs.
type Box struct {
	Size      mgl32.Vec3
	Positions [VertexCount]mgl32.Vec3
	Normals   [VertexCount]mgl32.Vec3
	// UVs is the flat vertex-UV attribute, two floats per vertex.
	UVs     [VertexCount * 2]float32
	Indices [IndexCount]uint32

	// UVsNeedUpdate is set whenever UVs change after construction so the
	// renderer re-uploads the attribute.
	UVsNeedUpdate bool
}

// plane describes how one face maps the 2D plane coordinates onto the box
// axes: u and v are the in-plane axes, w the normal axis.
type plane struct {
	face       blockmodel.Direction
	u, v, w    int
	udir, vdir float32
	wsign      float32
}

// planes is ordered by vertex block: east 0-3, west 4-7, up 8-11,
// down 12-15, south 16-19, north 20-23.
var planes = [FaceCount]plane{
	{blockmodel.East, 2, 1, 0, -1, -1, 1},
	{blockmodel.West, 2, 1, 0, 1, -1, -1},
	{blockmodel.Up, 0, 2, 1, 1, 1, 1},
	{blockmodel.Down, 0, 2, 1, 1, -1, -1},
	{blockmodel.South, 0, 1, 2, 1, -1, 1},
	{blockmodel.North, 0, 1, 2, -1, -1, -1},
}

// faceVertexPairs assigns each face two pairs of vertex indices into a Box.
// Together the pairs span the four vertices of that face.
var faceVertexPairs = map[blockmodel.Direction][2][2]int{
	blockmodel.East:  {{0, 1}, {2, 3}},
	blockmodel.West:  {{4, 5}, {6, 7}},
	blockmodel.Up:    {{8, 9}, {10, 11}},
	blockmodel.Down:  {{12, 13}, {14, 15}},
	blockmodel.South: {{16, 17}, {18, 19}},
	blockmodel.North: {{20, 21}, {22, 23}},
}

// FaceVertices returns the four vertex indices of a face in UV corner order.
func FaceVertices(face blockmodel.Direction) ([4]int, bool) {
	pairs, ok := faceVertexPairs[face]
	if !ok {
		return [4]int{}, false
	}
	return [4]int{pairs[0][0], pairs[0][1], pairs[1][0], pairs[1][1]}, true
}

// NewBox builds a box with the given extents and full-tile UVs on every face.
// Zero extents are allowed and produce a flat box.
func NewBox(size mgl32.Vec3) *Box {
	b := &Box{Size: size}
	for f, p := range planes {
		base := f * VerticesPerFace
		width, height, depth := size[p.u], size[p.v], size[p.w]
		for iy := 0; iy < 2; iy++ {
			y := float32(iy)*height - height/2
			for ix := 0; ix < 2; ix++ {
				x := float32(ix)*width - width/2
				i := base + iy*2 + ix

				var pos, n mgl32.Vec3
				pos[p.u] = x * p.udir
				pos[p.v] = y * p.vdir
				pos[p.w] = p.wsign * depth / 2
				n[p.w] = p.wsign
				b.Positions[i] = pos
				b.Normals[i] = n

				b.UVs[i*2] = float32(ix)
				b.UVs[i*2+1] = float32(1 - iy)
			}
		}

		a, bb, c, d := uint32(base), uint32(base+2), uint32(base+3), uint32(base+1)
		k := f * 6
		b.Indices[k+0], b.Indices[k+1], b.Indices[k+2] = a, bb, d
		b.Indices[k+3], b.Indices[k+4], b.Indices[k+5] = bb, c, d
	}
	return b
}

// UV returns the UV of vertex i.
func (b *Box) UV(i int) mgl32.Vec2 {
	return mgl32.Vec2{b.UVs[i*2], b.UVs[i*2+1]}
}

// ApplyFaceUV maps a pixel-space rectangle [u0, v0, u1, v1] onto one face.
// Coordinates are divided by AtlasTile and written to the face's vertices as
// (u0,v0), (u1,v0), (u0,v1), (u1,v1). Other faces keep their UVs. An unknown
// face leaves the box untouched and returns false.
func (b *Box) ApplyFaceUV(face blockmodel.Direction, rect [4]float32) bool {
	verts, ok := FaceVertices(face)
	if !ok {
		return false
	}
	u0, v0 := rect[0]/AtlasTile, rect[1]/AtlasTile
	u1, v1 := rect[2]/AtlasTile, rect[3]/AtlasTile
	corners := [4]mgl32.Vec2{{u0, v0}, {u1, v0}, {u0, v1}, {u1, v1}}
	for k, vi := range verts {
		b.UVs[vi*2] = corners[k][0]
		b.UVs[vi*2+1] = corners[k][1]
	}
	b.UVsNeedUpdate = true
	return true
}

// Bounds returns the local axis-aligned bounds of the box.
func (b *Box) Bounds() (lo, hi mgl32.Vec3) {
	half := b.Size.Mul(0.5)
	return half.Mul(-1), half
}
