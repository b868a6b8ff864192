// Package region captures and restores world cuboids as schematic
// files. A schematic carries blocks plus embedded marker entities, so an
// arena's geometry and spawn layout round-trip atomically through one
// file. Losing the file loses the spawn layout too, even though the
// registry still names the arena — a deliberate single point of failure
// accepted for that atomicity.
package region

import (
	"errors"

	"github.com/udisondev/paintgo/internal/world"
)

// ErrMissingRegion is returned when a named schematic does not exist or
// cannot be decoded.
var ErrMissingRegion = errors.New("region file missing or unreadable")

// Store is the capture/paste service for arena regions. Paste is
// idempotent at a fixed origin, and marker entities embedded in the
// capture round-trip through Restore.
type Store interface {
	// Capture snapshots the region of src into the named schematic,
	// optionally including entities.
	Capture(src *world.World, region world.Cuboid, origin world.BlockPos, includeEntities bool, name string) error

	// Restore pastes the named schematic into dst at origin.
	Restore(name string, dst *world.World, origin world.BlockPos, includeEntities bool) error

	// Clear recomputes the schematic's bounding box, offsets it to
	// origin and clears exactly that region of dst.
	Clear(name string, dst *world.World, origin world.BlockPos) error

	// Bounds returns the schematic's bounding box translated to origin.
	Bounds(name string, origin world.BlockPos) (world.Cuboid, error)

	// Exists reports whether the named schematic is present.
	Exists(name string) bool

	// Remove deletes the named schematic file.
	Remove(name string) error
}
