package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

const (
	// CurrentSchemaVersion tracks the database schema version
	CurrentSchemaVersion = "1.1.0"
)

// Migration represents a database schema migration
type Migration struct {
	Version string
	Up      string
	Down    string
}

// AllMigrations contains all database migrations in order
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
		Down:    migrationV1Down,
	},
	{
		Version: "1.1.0",
		Up:      migrationV11Up,
		Down:    migrationV11Down,
	},
}

// Business identifiers are text and carry no foreign keys: children refer to
// parents by value and the engine keeps them in step.
const migrationV1Up = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS projects (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    client TEXT NOT NULL DEFAULT '',
    location TEXT NOT NULL DEFAULT '',
    depth_log_page REAL NOT NULL DEFAULT 0,
    water_unit_w REAL NOT NULL DEFAULT 0,
    input_units TEXT NOT NULL DEFAULT '',
    output_units TEXT NOT NULL DEFAULT '',
    shear_strength_max REAL NOT NULL DEFAULT 0,
    water_content_max REAL NOT NULL DEFAULT 0,
    k_scale_min REAL NOT NULL DEFAULT 0,
    k_scale_increment REAL NOT NULL DEFAULT 0,
    draft_stamp TEXT NOT NULL DEFAULT '',
    coeff_of_consol_factor REAL NOT NULL DEFAULT 0,
    dynamic_max REAL NOT NULL DEFAULT 0,
    chamber_max REAL NOT NULL DEFAULT 0,
    becker_max REAL NOT NULL DEFAULT 0,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_projects_project_id ON projects(project_id);

CREATE TABLE IF NOT EXISTS points (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    point_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    hole_depth REAL NOT NULL DEFAULT 0,
    boring_date TEXT NOT NULL DEFAULT '',
    soil_drilling_contractor TEXT NOT NULL DEFAULT '',
    elevation REAL NOT NULL DEFAULT 0,
    plunge REAL NOT NULL DEFAULT -90,
    end_soil_depth REAL NOT NULL DEFAULT 0,
    start_rock_depth REAL NOT NULL DEFAULT 0,
    top_depth_rock REAL NOT NULL DEFAULT 0,
    rock_date TEXT NOT NULL DEFAULT '',
    rock_drilling_contractor TEXT NOT NULL DEFAULT '',
    rock_drilling_rig TEXT NOT NULL DEFAULT '',
    depth_log_page REAL NOT NULL DEFAULT 0,
    borehole_type TEXT NOT NULL DEFAULT '',
    north REAL NOT NULL DEFAULT 0,
    east REAL NOT NULL DEFAULT 0,
    surveyed INTEGER NOT NULL DEFAULT 0,
    coordinate_system TEXT NOT NULL DEFAULT '',
    zone TEXT NOT NULL DEFAULT '',
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_points_point_id ON points(point_id);
CREATE INDEX IF NOT EXISTS idx_points_project_id ON points(project_id);

CREATE TABLE IF NOT EXISTS cores (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    core_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    run_number INTEGER NOT NULL,
    tcr_length REAL NOT NULL DEFAULT 0,
    rqd_length REAL NOT NULL DEFAULT 0,
    jn REAL NOT NULL DEFAULT 0,
    fracture_index REAL NOT NULL DEFAULT 0,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_cores_core_id ON cores(core_id);
CREATE INDEX IF NOT EXISTS idx_cores_point_id ON cores(point_id);

CREATE TABLE IF NOT EXISTS strength_weathering (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    strength_id TEXT NOT NULL,
    core_id TEXT NOT NULL,
    strength_v1 TEXT NOT NULL DEFAULT '',
    strength_v2 TEXT NOT NULL DEFAULT '',
    weathering_v1 TEXT NOT NULL DEFAULT '',
    weathering_v2 TEXT NOT NULL DEFAULT '',
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_strength_strength_id ON strength_weathering(strength_id);
CREATE INDEX IF NOT EXISTS idx_strength_core_id ON strength_weathering(core_id);

CREATE TABLE IF NOT EXISTS discontinuities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    discontinuity_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    dip INTEGER NOT NULL DEFAULT 0,
    shape TEXT NOT NULL DEFAULT '',
    aperture INTEGER NOT NULL DEFAULT 0,
    roughness_rating INTEGER NOT NULL DEFAULT 0,
    weathering_rating INTEGER NOT NULL DEFAULT 0,
    jcr INTEGER NOT NULL DEFAULT 0,
    condition_discon INTEGER NOT NULL DEFAULT 0,
    jr_roughness REAL NOT NULL DEFAULT 0,
    ja_alteration REAL NOT NULL DEFAULT 0,
    jn_set REAL NOT NULL DEFAULT 0,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_discontinuities_discontinuity_id ON discontinuities(discontinuity_id);
CREATE INDEX IF NOT EXISTS idx_discontinuities_point_id ON discontinuities(point_id);

CREATE TABLE IF NOT EXISTS core_conditions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    core_condition_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    type TEXT NOT NULL,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_core_conditions_core_condition_id ON core_conditions(core_condition_id);
CREATE INDEX IF NOT EXISTS idx_core_conditions_point_id ON core_conditions(point_id);

CREATE TABLE IF NOT EXISTS samples (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sample_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    number INTEGER NOT NULL,
    type TEXT NOT NULL,
    v_15 INTEGER NOT NULL DEFAULT 0,
    v_30 INTEGER NOT NULL DEFAULT 0,
    v_45 INTEGER NOT NULL DEFAULT 0,
    sample_recobery TEXT NOT NULL DEFAULT '',
    blows_limit_depth TEXT NOT NULL DEFAULT '',
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_samples_sample_id ON samples(sample_id);
CREATE INDEX IF NOT EXISTS idx_samples_point_id ON samples(point_id);

CREATE TABLE IF NOT EXISTS hydraulic_cond (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hydraulic_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    number INTEGER NOT NULL,
    k REAL NOT NULL DEFAULT 0,
    k_check INTEGER NOT NULL DEFAULT 0,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_hydraulic_cond_hydraulic_id ON hydraulic_cond(hydraulic_id);
CREATE INDEX IF NOT EXISTS idx_hydraulic_cond_point_id ON hydraulic_cond(point_id);

CREATE TABLE IF NOT EXISTS soil_profiles (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    soil_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL,
    graphic TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    unit_summary TEXT NOT NULL DEFAULT '',
    linked_sample_id TEXT,
    linked_hydraulic_id TEXT,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_soil_profiles_soil_id ON soil_profiles(soil_id);
CREATE INDEX IF NOT EXISTS idx_soil_profiles_point_id ON soil_profiles(point_id);
CREATE INDEX IF NOT EXISTS idx_soil_profiles_linked_sample_id ON soil_profiles(linked_sample_id);

CREATE TABLE IF NOT EXISTS piezometers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    piezometer_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    graphic TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    therm_node_num INTEGER NOT NULL DEFAULT 0,
    lines INTEGER NOT NULL DEFAULT 0,
    color TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    prof_piezo REAL NOT NULL DEFAULT 0,
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_piezometers_piezometer_id ON piezometers(piezometer_id);
CREATE INDEX IF NOT EXISTS idx_piezometers_point_id ON piezometers(point_id);

CREATE TABLE IF NOT EXISTS water_observations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    water_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    water_observation_date TEXT NOT NULL DEFAULT '',
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_water_observations_water_id ON water_observations(water_id);
CREATE INDEX IF NOT EXISTS idx_water_observations_point_id ON water_observations(point_id);

CREATE TABLE IF NOT EXISTS methods (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    method_id TEXT NOT NULL,
    point_id TEXT NOT NULL,
    depth REAL NOT NULL,
    bottom REAL NOT NULL,
    method TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT '',
    sync_status INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_methods_method_id ON methods(method_id);
CREATE INDEX IF NOT EXISTS idx_methods_point_id ON methods(point_id);
`

const migrationV1Down = `
DROP TABLE IF EXISTS methods;
DROP TABLE IF EXISTS water_observations;
DROP TABLE IF EXISTS piezometers;
DROP TABLE IF EXISTS soil_profiles;
DROP TABLE IF EXISTS hydraulic_cond;
DROP TABLE IF EXISTS samples;
DROP TABLE IF EXISTS core_conditions;
DROP TABLE IF EXISTS discontinuities;
DROP TABLE IF EXISTS strength_weathering;
DROP TABLE IF EXISTS cores;
DROP TABLE IF EXISTS points;
DROP TABLE IF EXISTS projects;
`

// 1.1.0 indexes the permeability link and the per-point ordinal lookups
// used by renumbering.
const migrationV11Up = `
CREATE INDEX IF NOT EXISTS idx_soil_profiles_linked_hydraulic_id ON soil_profiles(linked_hydraulic_id);
CREATE INDEX IF NOT EXISTS idx_cores_point_run ON cores(point_id, run_number);
CREATE INDEX IF NOT EXISTS idx_samples_point_number ON samples(point_id, number);
CREATE INDEX IF NOT EXISTS idx_hydraulic_cond_point_number ON hydraulic_cond(point_id, number);
`

const migrationV11Down = `
DROP INDEX IF EXISTS idx_hydraulic_cond_point_number;
DROP INDEX IF EXISTS idx_samples_point_number;
DROP INDEX IF EXISTS idx_cores_point_run;
DROP INDEX IF EXISTS idx_soil_profiles_linked_hydraulic_id;
`

// currentVersion returns the highest applied version, 0.0.0 on a new database
func currentVersion(ctx context.Context, db *sql.DB) (*semver.Version, error) {
	var tableName string
	err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)
	if err == sql.ErrNoRows {
		return semver.MustParse("0.0.0"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer func() { _ = rows.Close() }()

	latest := semver.MustParse("0.0.0")
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to read schema_version: %w", err)
		}
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", s, err)
		}
		if v.GreaterThan(latest) {
			latest = v
		}
	}
	return latest, rows.Err()
}

// ApplyMigrations runs all pending migrations
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, migration := range AllMigrations {
		migrationVersion, err := semver.NewVersion(migration.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", migration.Version, err)
		}
		if !current.LessThan(migrationVersion) {
			continue
		}

		if _, err := db.ExecContext(ctx, migration.Up); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", migration.Version, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
		}
		current = migrationVersion
	}

	return nil
}

// RollbackMigration rolls back the most recent migration
func RollbackMigration(ctx context.Context, db *sql.DB) error {
	current, err := currentVersion(ctx, db)
	if err != nil {
		return err
	}
	if current.Equal(semver.MustParse("0.0.0")) {
		return fmt.Errorf("no migrations to rollback")
	}

	var migration *Migration
	for i := range AllMigrations {
		if semver.MustParse(AllMigrations[i].Version).Equal(current) {
			migration = &AllMigrations[i]
			break
		}
	}
	if migration == nil {
		return fmt.Errorf("migration %s not found", current)
	}

	if _, err := db.ExecContext(ctx, migration.Down); err != nil {
		return fmt.Errorf("failed to rollback migration %s: %w", migration.Version, err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM schema_version WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to remove migration record %s: %w", migration.Version, err)
	}

	return nil
}
