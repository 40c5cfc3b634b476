package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/brownzinoart/weready/internal/detect"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5

	// MaxRecentLimit caps one Recent query. The limit is caller-supplied and
	// sizes the result allocation, so it must never be trusted unbounded.
	MaxRecentLimit = 500
)

// Report is one persisted detection outcome. Persistence lives here, in the
// caller layer; the detect package itself stores nothing.
type Report struct {
	ID            string          `json:"id"`
	SchemaVersion int             `json:"-"`
	Timestamp     time.Time       `json:"timestamp"`
	Language      detect.Language `json:"language"`
	Method        string          `json:"extraction_method"`
	Score         float64         `json:"score"`
	Confidence    float64         `json:"confidence"`
	TotalRefs     int             `json:"total_references"`
	Unverified    []string        `json:"unverified_packages"`
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts under concurrent API traffic.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Save(report Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if report.ID == "" {
		return fmt.Errorf("report id must not be empty")
	}
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now().UTC()
	}
	if report.SchemaVersion == 0 {
		report.SchemaVersion = SchemaVersion
	}
	if report.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported report schema version %d", report.SchemaVersion)
	}

	unverified := report.Unverified
	if unverified == nil {
		unverified = []string{}
	}
	unverifiedJSON, err := json.Marshal(unverified)
	if err != nil {
		return fmt.Errorf("encode unverified list: %w", err)
	}

	const query = `
INSERT INTO reports (
  id, schema_version, ts_utc, language, method, score, confidence,
  total_references, unverified_count, unverified_json
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
	return s.withRetry("save report", func() error {
		_, err := s.db.Exec(
			query,
			report.ID,
			report.SchemaVersion,
			report.Timestamp.UTC().Format(time.RFC3339Nano),
			string(report.Language),
			report.Method,
			report.Score,
			report.Confidence,
			report.TotalRefs,
			len(unverified),
			string(unverifiedJSON),
		)
		return err
	})
}

// Recent returns the newest reports, most recent first. Limits outside
// (0, MaxRecentLimit] are clamped.
func (s *Store) Recent(limit int) ([]Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	const query = `
SELECT id, schema_version, ts_utc, language, method, score, confidence,
       total_references, unverified_count, unverified_json
FROM reports
ORDER BY ts_utc DESC
LIMIT ?
`
	var rows *sql.Rows
	err := s.withRetry("load reports", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]Report, 0, limit)
	for rows.Next() {
		var (
			report          Report
			tsRaw           string
			language        string
			unverifiedCount int
			unverifiedJSON  string
		)
		if err := rows.Scan(
			&report.ID,
			&report.SchemaVersion,
			&tsRaw,
			&language,
			&report.Method,
			&report.Score,
			&report.Confidence,
			&report.TotalRefs,
			&unverifiedCount,
			&unverifiedJSON,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse report timestamp %q: %w", tsRaw, err)
		}
		report.Timestamp = ts.UTC()
		report.Language = detect.Language(language)

		if err := json.Unmarshal([]byte(unverifiedJSON), &report.Unverified); err != nil {
			return nil, fmt.Errorf("decode unverified list: %w", err)
		}

		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}

	return reports, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
