package store

import (
	"context"
	"database/sql"
	"time"
)

// Statuses recorded against an application attempt.
const (
	StatusApplied = "applied"
	StatusFailed  = "failed"
)

type Application struct {
	ID             int64
	Link           string
	Company        string
	Title          string
	Location       string
	SearchLocation string
	Status         string
	AppliedAt      string
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS applications (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  link TEXT NOT NULL,
  company TEXT NOT NULL DEFAULT '',
  title TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  search_location TEXT NOT NULL DEFAULT '',
  status TEXT NOT NULL,
  applied_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_link
ON applications(link)
WHERE link != '';
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_applications_applied_at
ON applications(applied_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// HasApplied reports whether a submitted application for the link already
// exists. Failed attempts do not count; those postings deserve a retry.
func HasApplied(ctx context.Context, db *sql.DB, link string) (bool, error) {
	if link == "" {
		return false, nil
	}
	var one int
	err := db.QueryRowContext(ctx,
		`SELECT 1 FROM applications WHERE link = ? AND status = ? LIMIT 1;`,
		link, StatusApplied,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RecordApplication upserts the attempt keyed by link; a later successful
// submission overwrites an earlier failed row.
func RecordApplication(ctx context.Context, db *sql.DB, a Application) error {
	if a.AppliedAt == "" {
		a.AppliedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO applications(link, company, title, location, search_location, status, applied_at)
VALUES(?,?,?,?,?,?,?)
ON CONFLICT(link) WHERE link != '' DO UPDATE SET
  status = excluded.status,
  applied_at = excluded.applied_at;
`, a.Link, a.Company, a.Title, a.Location, a.SearchLocation, a.Status, a.AppliedAt)
	return err
}

// CleanupOldFailures drops failed attempts older than three months so the
// table does not grow without bound.
func CleanupOldFailures(db *sql.DB) (int64, error) {
	res, err := db.Exec(`
DELETE FROM applications
WHERE status = ? AND applied_at < datetime('now', '-3 months');
`, StatusFailed)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
