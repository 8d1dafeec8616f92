package blockmodel

import (
	"fmt"
	"strings"
)

// maxTextureHops bounds "#key" chains inside a texture map.
const maxTextureHops = 10

// Validate checks the structural invariants of a block definition.
//
// A box with to == from on some axis is accepted and renders with zero
// thickness on that axis; to < from is rejected. A uv rectangle without a
// face has nowhere to go and is rejected, while a face without a uv only
// drives the facing rotation.
func (b *Block) Validate() error {
	if len(b.From) != 3 {
		return fmt.Errorf("%w: from_coordinate has %d components, want 3", ErrMalformedBox, len(b.From))
	}
	if len(b.To) != 3 {
		return fmt.Errorf("%w: to_coordinate has %d components, want 3", ErrMalformedBox, len(b.To))
	}
	for i, axis := range [3]string{"x", "y", "z"} {
		if b.To[i] < b.From[i] {
			return fmt.Errorf("%w: to.%s=%g is less than from.%s=%g", ErrMalformedBox, axis, b.To[i], axis, b.From[i])
		}
	}

	if b.HasUV() {
		if len(b.UV) != 4 {
			return fmt.Errorf("%w: uv has %d components, want 4", ErrMalformedUV, len(b.UV))
		}
		if b.Face == "" {
			return fmt.Errorf("%w: uv declared without a face", ErrMalformedUV)
		}
	}

	if r := b.Rotation(); r != nil {
		if len(r.Origin) != 3 {
			return fmt.Errorf("%w: origin has %d components, want 3", ErrMalformedRotation, len(r.Origin))
		}
		if _, ok := r.Axis.Vector(); !ok {
			return fmt.Errorf("%w: axis %q is not one of x, y, z", ErrMalformedRotation, r.Axis)
		}
	}

	for i, p := range b.Positions {
		if len(p) != 3 {
			return fmt.Errorf("%w: positions[%d] has %d components, want 3", ErrMalformedPosition, i, len(p))
		}
	}
	return nil
}

// ResolveTexture maps a texture UUID to its resource path. Values of the
// form "#key" are followed through the same map.
func (r *Region) ResolveTexture(id string) (string, error) {
	path, ok := r.Textures[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTexture, id)
	}
	for i := 0; i < maxTextureHops && strings.HasPrefix(path, "#"); i++ {
		next, ok := r.Textures[strings.TrimPrefix(path, "#")]
		if !ok {
			return "", fmt.Errorf("%w: %q references missing %q", ErrUnknownTexture, id, path)
		}
		path = next
	}
	if strings.HasPrefix(path, "#") {
		return "", fmt.Errorf("%w: %q does not resolve within %d hops", ErrUnknownTexture, id, maxTextureHops)
	}
	return path, nil
}
