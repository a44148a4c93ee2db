package chem

import "errors"

// ErrInvalidStructure means the structural notation could not be parsed into
// a valid molecule.
var ErrInvalidStructure = errors.New("chem: invalid structure")
