// Package assets provides durable storage for uploaded images: bytes on
// disk with a SQLite index.
package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/cleoai/cleo/internal/logging"
)

// ErrNotFound is returned when an asset ID has no record.
var ErrNotFound = errors.New("asset not found")

// Asset describes one stored upload.
type Asset struct {
	ID        string
	MIME      string
	Size      int64
	CreatedAt time.Time
}

// Filename returns the on-disk name for the asset.
func (a Asset) Filename() string {
	return a.ID + extensionFor(a.MIME)
}

// Store persists uploaded assets and serves them back by ID.
type Store interface {
	Put(ctx context.Context, data []byte, mime string) (Asset, error)
	Get(ctx context.Context, id string) (Asset, []byte, error)
	Close() error
}

// DiskStore keeps asset bytes under a directory and their metadata in a
// SQLite database in the same directory.
type DiskStore struct {
	dir string
	db  *sql.DB
	log *logging.Logger
}

// Open creates (or reopens) a disk store rooted at dir and runs migrations.
func Open(dir string, log *logging.Logger) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating assets directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "assets.db"))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	s := &DiskStore{dir: dir, db: db, log: log.Sub("assets")}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.log.Info().Str("dir", dir).Msg("asset store opened")
	return s, nil
}

// Put stores the bytes and records them in the index. The caller has
// already validated size and media type.
func (s *DiskStore) Put(ctx context.Context, data []byte, mime string) (Asset, error) {
	asset := Asset{
		ID:        uuid.New().String(),
		MIME:      mime,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}

	path := filepath.Join(s.dir, asset.Filename())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Asset{}, fmt.Errorf("writing asset: %w", err)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (id, mime, size, created_at) VALUES (?, ?, ?, ?)`,
		asset.ID, asset.MIME, asset.Size, asset.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		os.Remove(path) // cleanup on index failure
		return Asset{}, fmt.Errorf("indexing asset: %w", err)
	}

	s.log.Debug().Str("id", asset.ID).Str("mime", mime).Int64("size", asset.Size).Msg("asset stored")
	return asset, nil
}

// Get returns the asset record and its bytes.
func (s *DiskStore) Get(ctx context.Context, id string) (Asset, []byte, error) {
	var asset Asset
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, mime, size, created_at FROM assets WHERE id = ?`, id,
	).Scan(&asset.ID, &asset.MIME, &asset.Size, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, nil, ErrNotFound
	}
	if err != nil {
		return Asset{}, nil, fmt.Errorf("looking up asset: %w", err)
	}
	asset.CreatedAt, _ = time.Parse(time.DateTime, createdAt)

	data, err := os.ReadFile(filepath.Join(s.dir, asset.Filename()))
	if err != nil {
		if os.IsNotExist(err) {
			return Asset{}, nil, ErrNotFound
		}
		return Asset{}, nil, fmt.Errorf("reading asset: %w", err)
	}
	return asset, data, nil
}

// Close closes the index database.
func (s *DiskStore) Close() error {
	return s.db.Close()
}

func extensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
