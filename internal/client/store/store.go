// Package store provides client persistence. All lookups are scoped by
// accountant so one accountant can never read another's clients.
package store

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ErrNotFound is returned when no client matches the scoped lookup.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "client not found")
