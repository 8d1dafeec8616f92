package assembly

import (
	"github.com/go-gl/mathgl/mgl32"

	"blockview/pkg/blockmodel"
)

var upAxis = mgl32.Vec3{0, 1, 0}

// facingYaw is deliberately not a uniform quarter-turn cycle: east and west
// are +90 and -90, matching the orientation of the exported assets.
var facingYaw = map[blockmodel.Direction]float32{
	blockmodel.North: 0,
	blockmodel.South: 180,
	blockmodel.East:  90,
	blockmodel.West:  -90,
}

// FacingYaw returns the yaw in degrees for a facing direction. Unknown,
// vertical and empty directions yield 0.
func FacingYaw(face blockmodel.Direction) float32 {
	return facingYaw[face]
}

// FacingRotation returns the yaw of face as a rotation about the up axis.
func FacingRotation(face blockmodel.Direction) mgl32.Quat {
	yaw := FacingYaw(face)
	if yaw == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(mgl32.DegToRad(yaw), upAxis)
}
