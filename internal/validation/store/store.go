// Package store provides the persistence implementations behind the
// validation service's SnapshotSource and FindingsStore ports.
package store

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across the in-memory and
// Postgres implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "tax year not found")
