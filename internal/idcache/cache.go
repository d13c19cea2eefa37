package idcache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"plexmeta/internal/ids"
	"plexmeta/internal/logging"
)

const (
	// DefaultExpirationDays is used when Open receives a non-positive TTL.
	DefaultExpirationDays = 60

	cacheStateNew       = "+"
	cacheStateRefreshed = "^"

	// Fixed width so stored timestamps sort and compare as text.
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion changes whenever schema.sql does. Older databases are not
// migrated; they have to be deleted and rebuilt.
const schemaVersion = 1

// ErrSchemaMismatch is returned by Open for a database of another schema version.
var ErrSchemaMismatch = errors.New("cache schema version mismatch")

// Record is one cached identity resolution.
type Record struct {
	Kind      ids.Kind
	GUID      string
	Set       ids.Set
	UpdatedAt time.Time
	Expired   bool
}

// Cache persists resolved identity sets keyed by (kind, native guid).
type Cache struct {
	db     *sql.DB
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
	locks  *keyLocks
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source used for timestamps and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// Open initializes or connects to the cache database at path.
func Open(path string, ttlDays int, logger *slog.Logger, opts ...Option) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path is required")
	}
	if ttlDays <= 0 {
		ttlDays = DefaultExpirationDays
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// busy_timeout is per connection, so it rides on the DSN for every pooled conn.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{
		db:     db,
		path:   path,
		ttl:    time.Duration(ttlDays) * 24 * time.Hour,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "idcache"),
		locks:  newKeyLocks(),
	}
	for _, opt := range opts {
		opt(cache)
	}

	if err := cache.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Get returns the cached set for (kind, guid). Expiry is computed against the
// current clock; expired sets are still returned so callers can reuse them.
func (c *Cache) Get(ctx context.Context, kind ids.Kind, guid string) (ids.Set, bool, bool, error) {
	ctx = ensureContext(ctx)
	release := c.locks.lock(lockKey(kind, guid))
	defer release()

	row := c.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM identities WHERE kind = ? AND guid = ?`,
		string(kind), guid,
	)
	record, err := c.scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ids.Set{}, false, false, nil
	}
	if err != nil {
		return ids.Set{}, false, false, fmt.Errorf("get cache record: %w", err)
	}
	return record.Set, true, record.Expired, nil
}

// Update upserts the set for (kind, guid) and stamps it with the current time.
// wasExpired only affects logging.
func (c *Cache) Update(ctx context.Context, kind ids.Kind, guid string, set ids.Set, wasExpired bool) error {
	ctx = ensureContext(ctx)
	tmdb, err := encodeID(set.TMDB)
	if err != nil {
		return fmt.Errorf("encode tmdb id: %w", err)
	}
	imdb, err := encodeID(set.IMDB)
	if err != nil {
		return fmt.Errorf("encode imdb id: %w", err)
	}

	release := c.locks.lock(lockKey(kind, guid))
	defer release()

	updatedAt := c.now().UTC().Format(timestampLayout)
	err = c.execWithRetry(ctx,
		`INSERT INTO identities (kind, guid, tmdb_id, imdb_id, tvdb_id, anidb_id, mal_id, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(kind, guid) DO UPDATE SET
             tmdb_id = excluded.tmdb_id,
             imdb_id = excluded.imdb_id,
             tvdb_id = excluded.tvdb_id,
             anidb_id = excluded.anidb_id,
             mal_id = excluded.mal_id,
             updated_at = excluded.updated_at`,
		string(kind), guid, tmdb, imdb,
		nullableInt(set.TVDB), nullableString(set.AniDB), nullableString(set.MAL),
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update cache record: %w", err)
	}

	state := cacheStateNew
	if wasExpired {
		state = cacheStateRefreshed
	}
	c.logger.Debug("cache updated",
		logging.String(logging.FieldEventType, "cache_update"),
		logging.String("cache_state", state),
		logging.String("kind", string(kind)),
		logging.String(logging.FieldGUID, guid),
		logging.String("tmdb_id", set.TMDB.String()),
		logging.String("imdb_id", set.IMDB.String()),
		logging.Int64("tvdb_id", set.TVDB),
	)
	return nil
}

// List returns every record ordered by most recent update first.
func (c *Cache) List(ctx context.Context) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM identities ORDER BY updated_at DESC, kind, guid`)
	if err != nil {
		return nil, fmt.Errorf("list cache records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := c.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cache record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cache records: %w", err)
	}
	return records, nil
}

// Stats summarizes cache contents.
type Stats struct {
	Total   int
	Movies  int
	Shows   int
	Expired int
}

// Count returns the total number of cached records.
func (c *Cache) Count(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM identities`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count cache records: %w", err)
	}
	return count, nil
}

// Stats returns per-kind and expired record counts.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	cutoff := c.now().Add(-c.ttl).UTC().Format(timestampLayout)
	var stats Stats
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN updated_at < ? THEN 1 ELSE 0 END), 0)
         FROM identities`,
		string(ids.KindMovie), string(ids.KindShow), cutoff,
	).Scan(&stats.Total, &stats.Movies, &stats.Shows, &stats.Expired)
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// Clear removes every record and returns how many were deleted.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	ctx = ensureContext(ctx)
	count, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.execWithRetry(ctx, `DELETE FROM identities`); err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	c.logger.Info("cache cleared",
		logging.String(logging.FieldEventType, "cache_cleared"),
		logging.Int("removed", count),
	)
	return count, nil
}

// ensureSchema creates the tables of a fresh database and rejects databases
// written with another schema version.
func (c *Cache) ensureSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create cache schema: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return fmt.Errorf("record cache schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read cache schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: %s has version %d, want %d (delete it to rebuild the cache)",
			ErrSchemaMismatch, c.path, version, schemaVersion)
	}
	return tx.Commit()
}

const recordColumns = `kind, guid, tmdb_id, imdb_id, tvdb_id, anidb_id, mal_id, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func (c *Cache) scanRecord(row scanner) (Record, error) {
	var (
		kind, guid, updated string
		tmdb, imdb          sql.NullString
		tvdb                sql.NullInt64
		anidb, mal          sql.NullString
	)
	if err := row.Scan(&kind, &guid, &tmdb, &imdb, &tvdb, &anidb, &mal, &updated); err != nil {
		return Record{}, err
	}
	tmdbID, err := decodeID[int64](tmdb)
	if err != nil {
		return Record{}, err
	}
	imdbID, err := decodeID[string](imdb)
	if err != nil {
		return Record{}, err
	}
	updatedAt, err := time.Parse(timestampLayout, updated)
	if err != nil {
		return Record{}, fmt.Errorf("parse updated_at %q: %w", updated, err)
	}
	return Record{
		Kind: ids.Kind(kind),
		GUID: guid,
		Set: ids.Set{
			TMDB:  tmdbID,
			IMDB:  imdbID,
			TVDB:  tvdb.Int64,
			AniDB: anidb.String,
			MAL:   mal.String,
		},
		UpdatedAt: updatedAt,
		Expired:   c.now().Sub(updatedAt) > c.ttl,
	}, nil
}

func lockKey(kind ids.Kind, guid string) string {
	return string(kind) + "\x00" + guid
}
