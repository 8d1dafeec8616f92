package blockmodel

import "github.com/go-gl/mathgl/mgl32"

// Direction names one of the six faces of a block.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Up    Direction = "up"
	Down  Direction = "down"
)

// Directions lists every known direction in a stable order.
var Directions = [...]Direction{North, South, East, West, Up, Down}

// Known reports whether d is one of the six direction literals.
// Matching is case-sensitive.
func (d Direction) Known() bool {
	switch d {
	case North, South, East, West, Up, Down:
		return true
	}
	return false
}

// Axis names one of the three cardinal world axes.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
	AxisZ Axis = "z"
)

// Vector returns the unit vector for the axis and false for an unknown axis.
func (a Axis) Vector() (mgl32.Vec3, bool) {
	switch a {
	case AxisX:
		return mgl32.Vec3{1, 0, 0}, true
	case AxisY:
		return mgl32.Vec3{0, 1, 0}, true
	case AxisZ:
		return mgl32.Vec3{0, 0, 1}, true
	}
	return mgl32.Vec3{}, false
}

// Document is the parsed model document. It is treated as immutable once
// parsed.
type Document struct {
	Author  string            `json:"author,omitempty"`
	Name    string            `json:"name,omitempty"`
	Regions map[string]Region `json:"regions"`
}

// Region groups blocks that share one texture map.
type Region struct {
	// Textures maps a texture UUID to a resource path. A value starting
	// with "#" refers to another key of the same map.
	Textures map[string]string `json:"textures"`
	Blocks   []Block           `json:"blocks"`
}

// Block is one cuboid template instantiated at every entry of Positions.
// Coordinates are kept as slices so that arity mistakes in the source
// surface as errors instead of being zero-filled by the decoder.
type Block struct {
	From            []float32        `json:"from_coordinate"`
	To              []float32        `json:"to_coordinate"`
	Texture         string           `json:"texture"`
	UV              []float32        `json:"uv,omitempty"`
	Face            Direction        `json:"face,omitempty"`
	ConnectedSides  []Direction      `json:"connected_sides,omitempty"`
	Transformations *Transformations `json:"transformations,omitempty"`
	Positions       [][]float32      `json:"positions"`
}

type Transformations struct {
	Rotation *Rotation `json:"rotation,omitempty"`
}

// Rotation turns a block about Origin (grid units) around one cardinal axis.
type Rotation struct {
	Origin []float32 `json:"origin"`
	Axis   Axis      `json:"axis"`
	Angle  float32   `json:"angle"`
}

// Rotation returns the declared pivot rotation or nil.
func (b *Block) Rotation() *Rotation {
	if b.Transformations == nil {
		return nil
	}
	return b.Transformations.Rotation
}

// HasUV reports whether the block overrides the UV rectangle of a face.
func (b *Block) HasUV() bool {
	return len(b.UV) > 0
}

// Extents returns to - from. Call Validate first.
func (b *Block) Extents() mgl32.Vec3 {
	return vec3(b.To).Sub(vec3(b.From))
}

// UVRect returns the UV rectangle as [u0, v0, u1, v1]. Call Validate first.
func (b *Block) UVRect() [4]float32 {
	var r [4]float32
	copy(r[:], b.UV)
	return r
}

// Position returns placement i as a vector. Call Validate first.
func (b *Block) Position(i int) mgl32.Vec3 {
	return vec3(b.Positions[i])
}

// OriginVec returns the rotation origin in grid units. Call Validate first.
func (r *Rotation) OriginVec() mgl32.Vec3 {
	return vec3(r.Origin)
}

func vec3(v []float32) mgl32.Vec3 {
	var out mgl32.Vec3
	copy(out[:], v)
	return out
}
