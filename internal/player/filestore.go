package player

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/udisondev/paintgo/internal/model"
)

// FileStore хранит профили как JSON файлы, по одному на игрока, с
// именем из UUID. Запись атомарна: временный файл плюс rename.
type FileStore struct {
	dir string
}

// NewFileStore creates the store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating profile dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".json")
}

// Load reads the profile. Absent profile is (nil, nil), not an error.
func (s *FileStore) Load(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading profile %s: %w", id, err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return &p, nil
}

// Save writes the profile atomically.
func (s *FileStore) Save(_ context.Context, p *model.Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.PlayerID, err)
	}
	tmp := s.path(p.PlayerID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", p.PlayerID, err)
	}
	if err := os.Rename(tmp, s.path(p.PlayerID)); err != nil {
		return fmt.Errorf("replacing profile %s: %w", p.PlayerID, err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() {}
