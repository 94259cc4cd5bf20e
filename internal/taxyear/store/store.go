// Package store provides tax year persistence.
package store

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ErrNotFound is returned when no tax year matches the lookup.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "tax year not found")
