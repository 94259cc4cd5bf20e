// Package store provides document metadata persistence.
package store

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ErrNotFound is returned when no document matches the lookup.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "document not found")
