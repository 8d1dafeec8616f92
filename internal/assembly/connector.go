package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/internal/geometry"
	"blockview/pkg/blockmodel"
)

// ConnectorThickness is the thin dimension of a connector slab.
const ConnectorThickness = 0.1

var connectorSizes = map[blockmodel.Direction]mgl32.Vec3{
	blockmodel.North: {ConnectorThickness, BlockUnit, BlockUnit},
	blockmodel.South: {ConnectorThickness, BlockUnit, BlockUnit},
	blockmodel.East:  {BlockUnit, BlockUnit, ConnectorThickness},
	blockmodel.West:  {BlockUnit, BlockUnit, ConnectorThickness},
	blockmodel.Up:    {BlockUnit, ConnectorThickness, BlockUnit},
	blockmodel.Down:  {BlockUnit, ConnectorThickness, BlockUnit},
}

// ConnectorSize returns the slab extents used for side.
func ConnectorSize(side blockmodel.Direction) (mgl32.Vec3, bool) {
	s, ok := connectorSizes[side]
	return s, ok
}

// SynthesizeConnectors emits one slab per known side, all placed at
// position with the parent's material. Unknown sides are skipped.
func SynthesizeConnectors(sides []blockmodel.Direction, mat Material, position mgl32.Vec3) []Connector {
	var out []Connector
	for _, side := range sides {
		size, ok := connectorSizes[side]
		if !ok {
			continue
		}
		out = append(out, Connector{
			Side:     side,
			Geometry: geometry.NewBox(size),
			Material: mat,
			Position: position,
		})
	}
	return out
}
