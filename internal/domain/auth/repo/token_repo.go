package repo

import (
	"context"
	"time"
)

// RefreshRegistry tracks refresh-token identifiers when single-use rotation is on.
type RefreshRegistry interface {
	// Consume marks jti as used and reports whether this call was the first one.
	Consume(ctx context.Context, jti string, expiresAt time.Time) (bool, error)
}
