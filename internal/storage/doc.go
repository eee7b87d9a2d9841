// Package storage provides SQLite-based persistence for borehole log records.
//
// Every entity lives in its own flat table keyed by an integer id and
// addressed by a text business identifier. Children refer to their point by
// point_id value only; there are no foreign keys between business ids.
//
// # Database Schema
//
// Tables:
//   - projects, points: the hierarchy (points carry project_id)
//   - cores, strength_weathering: drilling runs and their paired grade labels
//   - discontinuities, core_conditions: structural logging
//   - samples, hydraulic_cond: in-situ tests with a dense per-point number
//   - soil_profiles: strata, optionally linked to the test that derived them
//   - piezometers, water_observations, methods: installation and drilling data
//
// # Repositories
//
// Each table is reached through a typed Repository. Fields are declared in
// this package per entity, so lookups cannot name a column of another table:
//
//	samples, err := store.Samples().FindAll(ctx, storage.SamplePoint, "BH-01")
//	n, err := store.SoilProfiles().Count(ctx, storage.SoilLinkedSample, sampleID)
//
// Partial updates are assignments. Any write that does not set sync_status
// itself marks the row dirty (sync_status = 0):
//
//	_, err := store.Cores().UpdateWhere(ctx, storage.CorePoint, "BH-01",
//	    storage.Set(storage.CorePoint, "BH-01A"))
//
// # Transactions
//
// Cascades run inside RunAtomic. The callback receives a Tx exposing the same
// repositories; returning an error rolls every write back:
//
//	err := store.RunAtomic(ctx, func(tx storage.Tx) error {
//	    if err := tx.Samples().DeleteByID(ctx, s.ID); err != nil {
//	        return err
//	    }
//	    _, err := tx.SoilProfiles().DeleteWhere(ctx, storage.SoilLinkedSample, s.SampleID)
//	    return err
//	})
//
// The pool holds a single connection. Inside a transaction use only the Tx
// repositories; the database accessors would wait for the connection the
// transaction already holds.
//
// # Errors
//
// Missing rows return ErrNotFound (types.ErrRecordNotFound). Driver failures
// are wrapped with ErrStorageFailure (types.ErrStorageFailure) and keep the
// driver error in the chain.
//
// # Build Tags
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite
//
//   - No C compiler needed
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3
//
//     CGO_ENABLED=1 go build -tags sqlite_cgo ./...
//
// # Migrations
//
// ApplyMigrations runs on open and records applied versions in
// schema_version. Versions are compared as semantic versions.
package storage
