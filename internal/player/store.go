// Package player manages durable player profiles: loading them on
// entry, caching them while the player is online and writing them back
// after every match.
package player

import (
	"context"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/model"
)

// ProfileStore abstracts the durable profile backend. Load returns
// (nil, nil) when no profile exists for the id.
type ProfileStore interface {
	Load(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Save(ctx context.Context, p *model.Profile) error
	Close()
}
