package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/pkg/blockmodel"
)

// ApplyPivot rotates t about the rotation's origin (grid units, scaled by
// BlockUnit) around one cardinal world axis. The position orbits the origin
// and the orientation is pre-multiplied, so an existing facing rotation is
// kept and composed with the pivot. A nil rotation or unknown axis returns t
// unchanged.
func ApplyPivot(t Transform, r *blockmodel.Rotation) Transform {
	if r == nil {
		return t
	}
	axis, ok := r.Axis.Vector()
	if !ok {
		return t
	}
	origin := r.OriginVec().Mul(BlockUnit)
	q := mgl32.QuatRotate(mgl32.DegToRad(r.Angle), axis)

	return Transform{
		Position: origin.Add(q.Rotate(t.Position.Sub(origin))),
		Rotation: q.Mul(t.Rotation),
	}
}
