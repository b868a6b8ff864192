package region

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/world"
)

// snapshot is the on-disk schematic document. Block positions are
// stored relative to the capture origin so paste at any origin is a
// plain translation.
type snapshot struct {
	Min      world.BlockPos
	Max      world.BlockPos
	Blocks   []blockRecord
	Entities []entityRecord
}

type blockRecord struct {
	Pos   world.BlockPos
	Block world.Block
}

type entityRecord struct {
	Kind world.EntityKind
	Loc  model.Location // relative to capture origin
	Tags map[string]string
}

// FileStore keeps one gzip-compressed gob schematic per arena under a
// directory. The format is private to this process; nothing else reads
// these files.
type FileStore struct {
	dir string
}

// NewFileStore creates the schematic directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating schematics dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether the named schematic file is present.
func (s *FileStore) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// Remove deletes the named schematic file. Removing an absent file is
// not an error.
func (s *FileStore) Remove(name string) error {
	if err := os.Remove(s.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing schematic %s: %w", name, err)
	}
	return nil
}

// Capture snapshots the region of src into the named schematic file.
func (s *FileStore) Capture(src *world.World, region world.Cuboid, origin world.BlockPos, includeEntities bool, name string) error {
	snap := snapshot{
		Min: region.Min.Sub(origin),
		Max: region.Max.Sub(origin),
	}

	for pos, b := range src.BlocksIn(region) {
		snap.Blocks = append(snap.Blocks, blockRecord{Pos: pos.Sub(origin), Block: b})
	}

	if includeEntities {
		for _, kind := range []world.EntityKind{world.EntityMarker, world.EntityFlag} {
			for _, e := range src.EntitiesByKind(kind) {
				if !region.ContainsLoc(e.Loc) {
					continue
				}
				snap.Entities = append(snap.Entities, entityRecord{
					Kind: e.Kind,
					Loc: e.Loc.WithCoordinates(
						e.Loc.X-float64(origin.X),
						e.Loc.Y-float64(origin.Y),
						e.Loc.Z-float64(origin.Z),
					),
					Tags: e.Tags,
				})
			}
		}
	}

	if err := s.write(name, &snap); err != nil {
		return err
	}

	slog.Info("region captured",
		"schematic", name,
		"blocks", len(snap.Blocks),
		"entities", len(snap.Entities))
	return nil
}

// Restore pastes the named schematic into dst at origin. Pasting twice
// at the same origin yields the same world state.
func (s *FileStore) Restore(name string, dst *world.World, origin world.BlockPos, includeEntities bool) error {
	snap, err := s.read(name)
	if err != nil {
		return err
	}

	for _, br := range snap.Blocks {
		dst.SetBlock(br.Pos.Add(origin), br.Block)
	}

	if includeEntities {
		for _, er := range snap.Entities {
			loc := er.Loc.WithCoordinates(
				er.Loc.X+float64(origin.X),
				er.Loc.Y+float64(origin.Y),
				er.Loc.Z+float64(origin.Z),
			)
			// Copy tags so repeated pastes don't share maps.
			var tags map[string]string
			if er.Tags != nil {
				tags = make(map[string]string, len(er.Tags))
				for k, v := range er.Tags {
					tags[k] = v
				}
			}
			dst.SpawnEntity(er.Kind, loc, tags)
		}
	}

	slog.Info("region restored",
		"schematic", name,
		"world", dst.Name(),
		"blocks", len(snap.Blocks),
		"entities", len(snap.Entities))
	return nil
}

// Clear removes exactly the schematic's bounding box (offset to origin)
// from dst, entities included.
func (s *FileStore) Clear(name string, dst *world.World, origin world.BlockPos) error {
	bounds, err := s.Bounds(name, origin)
	if err != nil {
		return err
	}
	cleared := dst.ClearRegion(bounds)
	slog.Info("region cleared", "schematic", name, "world", dst.Name(), "blocks", cleared)
	return nil
}

// Bounds returns the schematic's bounding box translated to origin.
func (s *FileStore) Bounds(name string, origin world.BlockPos) (world.Cuboid, error) {
	snap, err := s.read(name)
	if err != nil {
		return world.Cuboid{}, err
	}
	return world.Cuboid{
		Min: snap.Min.Add(origin),
		Max: snap.Max.Add(origin),
	}, nil
}

func (s *FileStore) write(name string, snap *snapshot) error {
	// Write to a temp file first so a crash never leaves a truncated
	// schematic behind.
	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp schematic for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	zw := gzip.NewWriter(tmp)
	if err := gob.NewEncoder(zw).Encode(snap); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding schematic %s: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing schematic %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing schematic %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return fmt.Errorf("replacing schematic %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) read(name string) (*snapshot, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingRegion, name)
		}
		return nil, fmt.Errorf("opening schematic %s: %w", name, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingRegion, name, err)
	}
	defer zr.Close()

	var snap snapshot
	if err := gob.NewDecoder(zr).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingRegion, name, err)
	}
	return &snap, nil
}
