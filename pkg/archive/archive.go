package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	apperrors "personalens/pkg/errors"
	"personalens/pkg/metadata"
	"personalens/pkg/models"
)

// CurrentSchemaVersion is the latest schema version.
const CurrentSchemaVersion = 1

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = stderrors.New("run not found")

// Run is one archived extraction.
type Run struct {
	ID         string          `json:"id" yaml:"id"`
	Source     string          `json:"source" yaml:"source"`
	Digest     string          `json:"digest" yaml:"digest"`
	Handle     string          `json:"handle" yaml:"handle"`
	Strategy   models.Strategy `json:"strategy" yaml:"strategy"`
	Records    int             `json:"records" yaml:"records"`
	Pages      int             `json:"pages" yaml:"pages"`
	Duplicates int             `json:"duplicates" yaml:"duplicates"`
	CreatedAt  time.Time       `json:"created_at" yaml:"created_at"`
}

// Archive stores extraction runs in a SQLite database.
type Archive struct {
	db   *sql.DB
	path string
}

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to create archive directory")
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to open archive")
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to open archive")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to migrate archive")
	}

	_ = os.Chmod(path, 0600)

	return &Archive{db: db, path: path}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Path returns the database file location.
func (a *Archive) Path() string {
	return a.path
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS runs (
		  id          TEXT PRIMARY KEY,
		  source      TEXT NOT NULL,
		  digest      TEXT NOT NULL,
		  handle      TEXT,
		  strategy    TEXT NOT NULL,
		  records     INTEGER NOT NULL,
		  pages       INTEGER NOT NULL,
		  duplicates  INTEGER NOT NULL,
		  created_at  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_handle ON runs(handle, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_runs_digest ON runs(digest);

		CREATE TABLE IF NOT EXISTS records (
		  run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		  position      INTEGER NOT NULL,
		  id            TEXT NOT NULL,
		  text          TEXT NOT NULL,
		  timestamp_ms  INTEGER NOT NULL,
		  likes         INTEGER NOT NULL,
		  retweets      INTEGER NOT NULL,
		  replies       INTEGER NOT NULL,
		  views         INTEGER NOT NULL,
		  author_handle TEXT,
		  author_name   TEXT,
		  time_label    TEXT,
		  media_json    TEXT NOT NULL,
		  PRIMARY KEY (run_id, position)
		);

		CREATE TABLE IF NOT EXISTS profiles (
		  run_id       TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
		  handle       TEXT NOT NULL,
		  display_name TEXT NOT NULL,
		  bio          TEXT NOT NULL,
		  joined       TEXT NOT NULL,
		  tweets_count INTEGER NOT NULL,
		  followers    INTEGER NOT NULL,
		  following    INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", 1)); err != nil {
			return fmt.Errorf("failed to set user_version: %w", err)
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// SaveRun stores the run described by meta together with its records and
// profile in one transaction.
func (a *Archive) SaveRun(ctx context.Context, meta *metadata.RunMetadata, ext *models.Extraction) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, digest, handle, strategy, records, pages, duplicates, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, meta.Source, meta.Digest, toNullString(meta.Handle), string(ext.Strategy),
		len(ext.Records), ext.Pages, ext.Duplicates, meta.ExtractedAt.UnixMilli(),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to insert run %s", meta.RunID)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, position, id, text, timestamp_ms, likes, retweets, replies, views,
			author_handle, author_name, time_label, media_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to prepare record insert")
	}
	defer stmt.Close()

	for i, r := range ext.Records {
		media := r.Media
		if media == nil {
			media = []string{}
		}
		mediaJSON, err := json.Marshal(media)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to encode media")
		}
		_, err = stmt.ExecContext(ctx,
			meta.RunID, i, r.ID, r.Text, int64(r.TimestampMS),
			r.Likes, r.Retweets, r.Replies, r.Views,
			optionalString(r.AuthorHandle), optionalString(r.AuthorName), optionalString(r.TimeLabel),
			string(mediaJSON),
		)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to insert record %s", r.ID)
		}
	}

	p := ext.Profile
	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (run_id, handle, display_name, bio, joined, tweets_count, followers, following)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.RunID, p.Handle, p.DisplayName, p.Bio, p.Joined,
		int64(p.TweetsCount), int64(p.Followers), int64(p.Following),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to insert profile")
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to commit run %s", meta.RunID)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A non-empty handle
// restricts the list to that account.
func (a *Archive) ListRuns(ctx context.Context, handle string, limit int) ([]Run, error) {
	query := `
		SELECT id, source, digest, handle, strategy, records, pages, duplicates, created_at
		FROM runs`
	var args []any
	if handle = strings.TrimPrefix(handle, "@"); handle != "" {
		query += ` WHERE handle = ? COLLATE NOCASE`
		args = append(args, handle)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to list runs")
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to list runs")
	}
	return runs, nil
}

// GetRun returns a run and the extraction it archived.
func (a *Archive) GetRun(ctx context.Context, id string) (*Run, *models.Extraction, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, source, digest, handle, strategy, records, pages, duplicates, created_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeInput, ErrRunNotFound, "run %s", id)
	}
	if err != nil {
		return nil, nil, err
	}

	ext := &models.Extraction{
		Strategy:   run.Strategy,
		Pages:      run.Pages,
		Duplicates: run.Duplicates,
		Records:    []models.TweetRecord{},
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, text, timestamp_ms, likes, retweets, replies, views,
			author_handle, author_name, time_label, media_json
		FROM records WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to load records")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			r                            models.TweetRecord
			ts                           int64
			author, authorName, timeText sql.NullString
			mediaJSON                    string
		)
		if err := rows.Scan(&r.ID, &r.Text, &ts, &r.Likes, &r.Retweets, &r.Replies, &r.Views,
			&author, &authorName, &timeText, &mediaJSON); err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to scan record")
		}
		r.TimestampMS = uint64(ts)
		r.AuthorHandle = fromNullString(author)
		r.AuthorName = fromNullString(authorName)
		r.TimeLabel = fromNullString(timeText)
		if err := json.Unmarshal([]byte(mediaJSON), &r.Media); err != nil {
			return nil, nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to decode media")
		}
		ext.Records = append(ext.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to load records")
	}

	var tweets, followers, following int64
	err = a.db.QueryRowContext(ctx, `
		SELECT handle, display_name, bio, joined, tweets_count, followers, following
		FROM profiles WHERE run_id = ?`, id).Scan(
		&ext.Profile.Handle, &ext.Profile.DisplayName, &ext.Profile.Bio, &ext.Profile.Joined,
		&tweets, &followers, &following,
	)
	if err != nil && !stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to load profile")
	}
	ext.Profile.TweetsCount = uint64(tweets)
	ext.Profile.Followers = uint64(followers)
	ext.Profile.Following = uint64(following)

	return run, ext, nil
}

// HasDigest reports whether a snapshot with this digest was archived before.
func (a *Archive) HasDigest(ctx context.Context, digest string) (bool, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE digest = ?`, digest).Scan(&n); err != nil {
		return false, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to look up digest")
	}
	return n > 0, nil
}

// DeleteRun removes a run with its records and profile.
func (a *Archive) DeleteRun(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to delete run %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.Wrap(apperrors.ErrorTypeInput, ErrRunNotFound, "run %s", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var (
		run      Run
		handle   sql.NullString
		strategy string
		created  int64
	)
	err := s.Scan(&run.ID, &run.Source, &run.Digest, &handle, &strategy,
		&run.Records, &run.Pages, &run.Duplicates, &created)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeArchive, err, "failed to scan run")
	}
	run.Handle = handle.String
	run.Strategy = models.Strategy(strategy)
	run.CreatedAt = time.UnixMilli(created).UTC()
	return &run, nil
}

func toNullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func optionalString(o models.Optional[string]) sql.NullString {
	v, ok := o.Get()
	return sql.NullString{String: v, Valid: ok}
}

func fromNullString(ns sql.NullString) models.Optional[string] {
	if !ns.Valid {
		return models.None[string]()
	}
	return models.Some(ns.String)
}
