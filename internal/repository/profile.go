package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/biomente/biomente/internal/domain"
)

// Keys of the two logical records held in the kv table.
const (
	keyProfiles      = "profiles"
	keyActiveProfile = "active_profile"
)

// ProfileRepository persists the full profile collection and the active-profile pointer
// as two records in a local SQLite key-value table.
type ProfileRepository struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite file at path and prepares the schema.
func Open(path string) (*ProfileRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	repo := &ProfileRepository{db: db}
	if err := repo.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

func (r *ProfileRepository) Close() error {
	return r.db.Close()
}

func (r *ProfileRepository) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS kv (
        key   TEXT PRIMARY KEY,
        value TEXT NOT NULL
    );
    `
	_, err := r.db.Exec(schema)
	return err
}

// Load reads the profile collection and the active-profile id. It fails soft: a missing
// record, corrupt JSON, or an active id that does not match any loaded profile all degrade
// to empty state with a logged warning, never an error.
func (r *ProfileRepository) Load(ctx context.Context) ([]domain.Profile, string) {
	var profiles []domain.Profile

	raw, err := r.get(ctx, keyProfiles)
	if err != nil {
		log.Printf("repository: failed to read stored profiles, starting empty: %v", err)
		return nil, ""
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
			log.Printf("repository: corrupt profile record, starting empty: %v", err)
			return nil, ""
		}
	}

	activeID, err := r.get(ctx, keyActiveProfile)
	if err != nil {
		log.Printf("repository: failed to read active profile id: %v", err)
		return profiles, ""
	}
	if activeID != "" && !containsProfile(profiles, activeID) {
		log.Printf("repository: stored active profile %q not found, ignoring", activeID)
		activeID = ""
	}

	return profiles, activeID
}

// Save writes both records. The profile record is skipped when the list is empty so a
// transient empty state during startup never clobbers stored data. An empty active id
// deletes the pointer record.
func (r *ProfileRepository) Save(ctx context.Context, profiles []domain.Profile, activeID string) error {
	if len(profiles) > 0 {
		raw, err := json.Marshal(profiles)
		if err != nil {
			return fmt.Errorf("failed to marshal profiles: %w", err)
		}
		if err := r.put(ctx, keyProfiles, string(raw)); err != nil {
			return fmt.Errorf("failed to store profiles: %w", err)
		}
	}

	if activeID == "" {
		if err := r.delete(ctx, keyActiveProfile); err != nil {
			return fmt.Errorf("failed to clear active profile: %w", err)
		}
		return nil
	}
	if err := r.put(ctx, keyActiveProfile, activeID); err != nil {
		return fmt.Errorf("failed to store active profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *ProfileRepository) put(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func (r *ProfileRepository) delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

func containsProfile(profiles []domain.Profile, id string) bool {
	for _, p := range profiles {
		if p.ID == id {
			return true
		}
	}
	return false
}
