// Package store provides accountant persistence.
package store

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ErrNotFound is returned when no accountant matches the lookup.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "accountant not found")
