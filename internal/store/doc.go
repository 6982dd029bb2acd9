// Package store provides the SQLite-backed model archive.
//
// The archive is content-addressed:
//   - Models: one row per distinct canonical body, keyed by hash
//   - Representations: original notation source texts per model
//   - Save Log: append-only provenance, one row per save call
//
// Saving the same content twice inserts nothing into models but always
// appends to save_log, so the log answers "when and from where was this
// model saved" without duplicating bodies.
//
// # Ordering
//
// Listings order by save time with the content hash as tiebreak; history
// orders by save time with the UUIDv7 save id as tiebreak. Both are
// deterministic for a fixed clock.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Content hashes are computed in internal/model using RFC 8785 canonical
// JSON and SHA-256 with domain separation.
package store
