package player

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/paintgo/internal/model"
	"github.com/udisondev/paintgo/internal/player/migrations"
)

// PostgresStore keeps profiles in a profiles table as JSONB documents
// keyed by player id. The document layout matches the file backend, so
// the two stores are interchangeable behind ProfileStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// RunMigrations applies the embedded goose migrations to the DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Load reads the profile document. Absent profile is (nil, nil).
func (s *PostgresStore) Load(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM profiles WHERE player_id = $1`, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying profile %s: %w", id, err)
	}
	var p model.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding profile %s: %w", id, err)
	}
	return &p, nil
}

// Save upserts the profile document.
func (s *PostgresStore) Save(ctx context.Context, p *model.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile %s: %w", p.PlayerID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO profiles (player_id, data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (player_id) DO UPDATE SET data = $2, updated_at = now()`,
		p.PlayerID, data,
	)
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.PlayerID, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}
