package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/pir/internal/model"
)

// ErrNotFound reports that no archived model matches the requested hash.
var ErrNotFound = errors.New("model not found")

// ModelInfo is one row of the archive listing.
type ModelInfo struct {
	Hash          string
	Name          string
	FormatVersion string
	Saves         int       // save_log entries for this model
	LastSavedAt   time.Time // most recent save
}

// SaveEntry is one provenance row from the save log.
type SaveEntry struct {
	SaveID   string
	Hash     string
	Source   string
	Notation string
	SavedAt  time.Time
}

// LoadModel returns the archived model for a content hash.
// Returns ErrNotFound (wrapped) when the hash is not archived.
func (s *Store) LoadModel(ctx context.Context, hash string) (*model.Model, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM models WHERE hash = ?
	`, hash).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load model %s: %w", hash, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	var m model.Model
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		return nil, fmt.Errorf("load model: decode body: %w", err)
	}
	return &m, nil
}

// LoadRepresentation returns the stored source text of one notation
// representation. Returns ErrNotFound when the model or the format is
// not archived.
func (s *Store) LoadRepresentation(ctx context.Context, hash, format string) (string, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `
		SELECT body FROM representations WHERE model_hash = ? AND format = ?
	`, hash, format).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("load representation %s/%s: %w", hash, format, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("load representation: %w", err)
	}
	return body, nil
}

// ListModels returns one row per archived model, most recently saved
// first. Hash breaks timestamp ties so the listing is deterministic.
//
// Returns an empty slice (not nil) when the archive is empty.
func (s *Store) ListModels(ctx context.Context) ([]ModelInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.hash, m.name, m.format_version, COUNT(l.id), MAX(l.saved_at)
		FROM models m
		JOIN save_log l ON l.model_hash = m.hash
		GROUP BY m.hash
		ORDER BY MAX(l.saved_at) DESC, m.hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer rows.Close()

	var infos []ModelInfo
	for rows.Next() {
		var info ModelInfo
		var lastSaved int64
		if err := rows.Scan(&info.Hash, &info.Name, &info.FormatVersion, &info.Saves, &lastSaved); err != nil {
			return nil, fmt.Errorf("list models: scan: %w", err)
		}
		info.LastSavedAt = time.Unix(0, lastSaved).UTC()
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list models: iterate: %w", err)
	}

	// Return empty slice instead of nil
	if infos == nil {
		infos = []ModelInfo{}
	}

	return infos, nil
}

// History returns the save-log rows for a model, oldest first. UUIDv7 save
// ids are time-ordered, so id breaks same-instant ties deterministically.
//
// Returns an empty slice (not nil) when the hash has never been saved.
func (s *Store) History(ctx context.Context, hash string) ([]SaveEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, model_hash, source, notation, saved_at
		FROM save_log
		WHERE model_hash = ?
		ORDER BY saved_at ASC, id COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	defer rows.Close()

	var entries []SaveEntry
	for rows.Next() {
		var entry SaveEntry
		var savedAt int64
		if err := rows.Scan(&entry.SaveID, &entry.Hash, &entry.Source, &entry.Notation, &savedAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		entry.SavedAt = time.Unix(0, savedAt).UTC()
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate: %w", err)
	}

	if entries == nil {
		entries = []SaveEntry{}
	}

	return entries, nil
}
