package blockmodel

import "errors"

var (
	// ErrNoRegions is returned when a document has no "regions" member.
	ErrNoRegions = errors.New("blockmodel: document has no regions")
	// ErrInvalidDocument wraps JSON syntax and schema failures.
	ErrInvalidDocument = errors.New("blockmodel: invalid document")

	ErrMalformedBox      = errors.New("blockmodel: malformed box")
	ErrMalformedUV       = errors.New("blockmodel: malformed uv")
	ErrMalformedRotation = errors.New("blockmodel: malformed rotation")
	ErrMalformedPosition = errors.New("blockmodel: malformed position")
	ErrUnknownTexture    = errors.New("blockmodel: unknown texture")
)
