// Package sdk reconstructs engine reflection data from a memory snapshot
// and emits it as C++ declarations.
package sdk

import "errors"

// Sentinel errors for common conditions.
var (
	// ErrObjectNotFound indicates no object has the requested full name.
	ErrObjectNotFound = errors.New("sdk: object not found")

	// ErrPackageNotFound indicates no package has the requested name.
	ErrPackageNotFound = errors.New("sdk: package not found")

	// ErrFileClosed indicates the snapshot has been closed.
	ErrFileClosed = errors.New("sdk: file is closed")
)
