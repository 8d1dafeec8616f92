// Package assembly turns block definitions and their placements into mesh
// descriptors for a scene.
package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/internal/geometry"
	"blockview/pkg/blockmodel"
)

// BlockUnit is the world size of one grid cell. It equals the atlas tile
// edge so that one grid cell shows exactly one texture tile.
const BlockUnit = 16.0

// Material is a textured surface. Texture is the resolved resource path.
type Material struct {
	Texture string
}

// Transform places a mesh in the world.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl32.QuatIdent()}
}

// Mesh is the descriptor emitted for one block at one placement.
type Mesh struct {
	Geometry  *geometry.Box
	Material  Material
	Transform Transform
}

// Connector is a thin slab bridging a block towards one side. It carries a
// position only and is never rotated.
type Connector struct {
	Side     blockmodel.Direction
	Geometry *geometry.Box
	Material Material
	Position mgl32.Vec3
}

// Assembly is everything produced for one (block, placement) pair.
type Assembly struct {
	Mesh       Mesh
	Connectors []Connector
}
