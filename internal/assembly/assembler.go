package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/internal/geometry"
	"blockview/pkg/blockmodel"
)

// Assemble builds the descriptors for one validated block at one placement
// (grid units). It has no hidden state: the same inputs always produce the
// same descriptors.
//
// Order matters: UVs, placement, facing, connectors, pivot. The connectors
// are taken from the facing-resolved transform so they never see the pivot.
func Assemble(b *blockmodel.Block, mat Material, placement mgl32.Vec3) Assembly {
	// Model coordinates are already in atlas pixels, so the box extents are
	// to - from without further scaling.
	box := geometry.NewBox(b.Extents())
	if b.HasUV() && b.Face != "" {
		box.ApplyFaceUV(b.Face, b.UVRect())
	}

	t := Identity()
	t.Position = placement.Mul(BlockUnit)
	if b.Face != "" {
		t.Rotation = FacingRotation(b.Face).Mul(t.Rotation)
	}

	var connectors []Connector
	if len(b.ConnectedSides) > 0 {
		connectors = SynthesizeConnectors(b.ConnectedSides, mat, t.Position)
	}

	if r := b.Rotation(); r != nil {
		t = ApplyPivot(t, r)
	}

	return Assembly{
		Mesh: Mesh{
			Geometry:  box,
			Material:  mat,
			Transform: t,
		},
		Connectors: connectors,
	}
}

// AssembleBlock validates b and assembles it at every placement.
func AssembleBlock(b *blockmodel.Block, mat Material) ([]Assembly, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	out := make([]Assembly, 0, len(b.Positions))
	for i := range b.Positions {
		out = append(out, Assemble(b, mat, b.Position(i)))
	}
	return out, nil
}
