package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/roach88/pir/internal/model"
)

// SaveReceipt describes the outcome of a SaveModel call.
type SaveReceipt struct {
	// SaveID is the UUIDv7 identity of this save event. Unique per call,
	// even when the content already existed.
	SaveID string

	// Hash is the model's content address.
	Hash string

	// Created is true when this save inserted a new model row, false when
	// identical content was already archived.
	Created bool
}

// SaveModel archives a model. Content-addressed and idempotent: the model
// body is canonicalized, hashed, and inserted only if that hash is new.
// Re-saving identical content is a no-op for the models table but still
// appends a save_log row, so provenance records every save.
//
// source is where the content came from (a file path, "-" for stdin);
// notation is the adapter that parsed it, or "" when the model was built
// directly.
func (s *Store) SaveModel(ctx context.Context, m *model.Model, source, notation string) (SaveReceipt, error) {
	body, err := model.MarshalCanonical(m)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: %w", err)
	}
	hash, err := model.Hash(m)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: %w", err)
	}

	saveID, err := uuid.NewV7()
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: new save id: %w", err)
	}
	now := s.clock.Now().UTC().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	// Claim the content address. ON CONFLICT DO NOTHING makes re-saves of
	// identical content silent.
	result, err := tx.ExecContext(ctx, `
		INSERT INTO models (hash, name, format_version, body, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		hash,
		m.Metadata["process_name"],
		model.FormatVersion,
		string(body),
		now,
	)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: insert model: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: rows affected: %w", err)
	}
	created := rowsAffected > 0

	if created {
		// Same hash means same representations, so these only need writing
		// alongside a new model row.
		formats := make([]string, 0, len(m.Representations))
		for format := range m.Representations {
			formats = append(formats, format)
		}
		sort.Strings(formats)
		for _, format := range formats {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO representations (model_hash, format, body)
				VALUES (?, ?, ?)
			`, hash, format, m.Representations[format])
			if err != nil {
				return SaveReceipt{}, fmt.Errorf("save model: insert representation %s: %w", format, err)
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO save_log (id, model_hash, source, notation, saved_at)
		VALUES (?, ?, ?, ?, ?)
	`, saveID.String(), hash, source, notation, now)
	if err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: append save log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return SaveReceipt{}, fmt.Errorf("save model: commit: %w", err)
	}

	return SaveReceipt{SaveID: saveID.String(), Hash: hash, Created: created}, nil
}
