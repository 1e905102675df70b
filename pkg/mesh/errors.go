package mesh

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error a build returns for arguments
// it cannot work with.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyMesh is returned when a build is asked to index a mesh with no
// triangles.
var ErrEmptyMesh = fmt.Errorf("%w: mesh has no triangles", ErrInvalidInput)
