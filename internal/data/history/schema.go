package history

import "database/sql"

const SchemaVersion = 1

// EnsureSchema creates the reports table when missing. One row per detection
// call; the unverified name list is stored as a JSON array.
func EnsureSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS reports (
  id               TEXT PRIMARY KEY,
  schema_version   INTEGER NOT NULL,
  ts_utc           TEXT NOT NULL,
  language         TEXT NOT NULL,
  method           TEXT NOT NULL,
  score            REAL NOT NULL,
  confidence       REAL NOT NULL,
  total_references INTEGER NOT NULL,
  unverified_count INTEGER NOT NULL,
  unverified_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_ts ON reports (ts_utc DESC);
`
	_, err := db.Exec(schema)
	return err
}
