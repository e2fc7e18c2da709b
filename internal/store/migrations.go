package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "decisions: deliberation journal",
		SQL: `
CREATE TABLE decisions (
    id           TEXT PRIMARY KEY,
    scenario     TEXT NOT NULL,
    selected     TEXT NOT NULL DEFAULT '[]',
    impressions  TEXT NOT NULL DEFAULT '[]',
    decision     TEXT NOT NULL,
    created_at   INTEGER NOT NULL
);

CREATE INDEX idx_decisions_created_at ON decisions(created_at DESC);
`,
	},
	{
		Version:     2,
		Description: "reflections: outcomes offered to the council",
		SQL: `
CREATE TABLE reflections (
    id           INTEGER PRIMARY KEY,
    decision_id  TEXT,
    scenario     TEXT NOT NULL,
    action_taken TEXT NOT NULL,
    result       TEXT NOT NULL,
    retained_by  TEXT NOT NULL DEFAULT '[]',
    created_at   INTEGER NOT NULL,

    FOREIGN KEY (decision_id) REFERENCES decisions(id) ON DELETE SET NULL
);

CREATE INDEX idx_reflections_decision ON reflections(decision_id);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
