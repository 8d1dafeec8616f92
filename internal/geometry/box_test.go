package geometry

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blockview/pkg/blockmodel"
)

func TestNewBoxExtents(t *testing.T) {
	b := NewBox(mgl32.Vec3{16, 8, 4})
	bmin, bmax := b.Bounds()
	assert.Equal(t, mgl32.Vec3{-8, -4, -2}, bmin)
	assert.Equal(t, mgl32.Vec3{8, 4, 2}, bmax)

	var lo, hi mgl32.Vec3
	for _, p := range b.Positions {
		for a := 0; a < 3; a++ {
			lo[a] = min(lo[a], p[a])
			hi[a] = max(hi[a], p[a])
		}
	}
	assert.Equal(t, mgl32.Vec3{16, 8, 4}, hi.Sub(lo))
}

func TestFaceNormalsMatchTable(t *testing.T) {
	want := map[blockmodel.Direction]mgl32.Vec3{
		blockmodel.East:  {1, 0, 0},
		blockmodel.West:  {-1, 0, 0},
		blockmodel.Up:    {0, 1, 0},
		blockmodel.Down:  {0, -1, 0},
		blockmodel.South: {0, 0, 1},
		blockmodel.North: {0, 0, -1},
	}
	b := NewBox(mgl32.Vec3{2, 2, 2})
	for face, n := range want {
		verts, ok := FaceVertices(face)
		require.True(t, ok, face)
		for _, vi := range verts {
			assert.Equal(t, n, b.Normals[vi], "%s vertex %d", face, vi)
			axis := 0
			for a := 0; a < 3; a++ {
				if n[a] != 0 {
					axis = a
				}
			}
			// half extent is 1, so the face plane sits at the normal's sign
			assert.Equal(t, n[axis], b.Positions[vi][axis], "%s vertex %d on plane", face, vi)
		}
	}
}

func TestDefaultUVs(t *testing.T) {
	b := NewBox(mgl32.Vec3{16, 16, 16})
	assert.False(t, b.UVsNeedUpdate)
	for _, face := range blockmodel.Directions {
		verts, _ := FaceVertices(face)
		assert.Equal(t, mgl32.Vec2{0, 1}, b.UV(verts[0]), face)
		assert.Equal(t, mgl32.Vec2{1, 1}, b.UV(verts[1]), face)
		assert.Equal(t, mgl32.Vec2{0, 0}, b.UV(verts[2]), face)
		assert.Equal(t, mgl32.Vec2{1, 0}, b.UV(verts[3]), face)
	}
}

func TestApplyFaceUVIdentity(t *testing.T) {
	for _, face := range blockmodel.Directions {
		b := NewBox(mgl32.Vec3{16, 16, 16})
		require.True(t, b.ApplyFaceUV(face, [4]float32{0, 0, 16, 16}))
		verts, _ := FaceVertices(face)
		got := []mgl32.Vec2{b.UV(verts[0]), b.UV(verts[1]), b.UV(verts[2]), b.UV(verts[3])}
		assert.Equal(t, []mgl32.Vec2{{0, 0}, {1, 0}, {0, 1}, {1, 1}}, got, face)
		assert.True(t, b.UVsNeedUpdate)
	}
}

func TestApplyFaceUVLeavesOtherFaces(t *testing.T) {
	b := NewBox(mgl32.Vec3{16, 16, 16})
	untouched := NewBox(mgl32.Vec3{16, 16, 16})
	require.True(t, b.ApplyFaceUV(blockmodel.Up, [4]float32{0, 0, 8, 8}))

	up, _ := FaceVertices(blockmodel.Up)
	assert.Equal(t, mgl32.Vec2{0, 0}, b.UV(up[0]))
	assert.Equal(t, mgl32.Vec2{0.5, 0}, b.UV(up[1]))
	assert.Equal(t, mgl32.Vec2{0, 0.5}, b.UV(up[2]))
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, b.UV(up[3]))

	for _, face := range blockmodel.Directions {
		if face == blockmodel.Up {
			continue
		}
		verts, _ := FaceVertices(face)
		for _, vi := range verts {
			assert.Equal(t, untouched.UV(vi), b.UV(vi), "%s vertex %d", face, vi)
		}
	}
}

func TestApplyFaceUVUnknownFace(t *testing.T) {
	b := NewBox(mgl32.Vec3{16, 16, 16})
	before := b.UVs
	assert.False(t, b.ApplyFaceUV("sideways", [4]float32{0, 0, 8, 8}))
	assert.Equal(t, before, b.UVs)
	assert.False(t, b.UVsNeedUpdate)
}

func TestFaceVertexPairsCoverEveryVertexOnce(t *testing.T) {
	seen := make(map[int]bool)
	for _, face := range blockmodel.Directions {
		verts, ok := FaceVertices(face)
		require.True(t, ok)
		for _, vi := range verts {
			assert.False(t, seen[vi], "vertex %d assigned twice", vi)
			seen[vi] = true
		}
	}
	assert.Len(t, seen, VertexCount)
}

func TestZeroThicknessBox(t *testing.T) {
	b := NewBox(mgl32.Vec3{16, 0, 16})
	for _, p := range b.Positions {
		assert.Equal(t, float32(0), p[1])
	}
}
