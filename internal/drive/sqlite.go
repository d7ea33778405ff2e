package drive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/hubtree/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	path     TEXT PRIMARY KEY,
	raw      BLOB NOT NULL,
	version  INTEGER NOT NULL,
	writer   TEXT NOT NULL DEFAULT '',
	wversion INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS kv_version ON kv(version);
`

// SQLiteDrive keeps documents in one table of a SQLite database. Every
// write takes the next global version, so other processes sharing the
// file are noticed by polling the highest version.
type SQLiteDrive struct {
	db   *sql.DB
	path string
	hub  *hub

	pollMu   sync.Mutex
	lastSeen int64

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// OpenSQLite opens or creates the database at path. Changes by other
// writers are checked every poll interval.
func OpenSQLite(path string, poll time.Duration) (*SQLiteDrive, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	d := &SQLiteDrive{db: db, path: path, hub: newHub()}
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM kv`).Scan(&d.lastSeen); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading version: %w", err)
	}

	if poll <= 0 {
		poll = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	go d.pollLoop(ctx, poll)
	return d, nil
}

// Path returns the database file.
func (d *SQLiteDrive) Path() string { return d.path }

// Get implements Drive.
func (d *SQLiteDrive) Get(ctx context.Context, path string) ([]byte, error) {
	defer metrics.Timer(metrics.DriveRead)()
	var raw []byte
	err := d.db.QueryRowContext(ctx, `SELECT raw FROM kv WHERE path = ?`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return raw, nil
}

// Put stores raw and reports it right away rather than waiting for the
// next poll.
func (d *SQLiteDrive) Put(ctx context.Context, path string, raw []byte, origin Origin) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if raw == nil {
		raw = []byte{}
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO kv (path, raw, version, writer, wversion)
		VALUES (?, ?, (SELECT COALESCE(MAX(version), 0) + 1 FROM kv), ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			raw = excluded.raw,
			version = excluded.version,
			writer = excluded.writer,
			wversion = excluded.wversion`,
		path, raw, origin.Writer, int64(origin.Version))
	if err != nil {
		metrics.DriveWriteErrors.Inc()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	metrics.DriveWrites.Inc()
	return d.poll(ctx)
}

// List implements Drive.
func (d *SQLiteDrive) List(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT path FROM kv ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing drive: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("listing drive: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Watch implements Drive.
func (d *SQLiteDrive) Watch(ctx context.Context) (<-chan Batch, error) {
	paths, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	return d.hub.subscribe(ctx, Group(paths, Origin{}))
}

func (d *SQLiteDrive) pollLoop(ctx context.Context, every time.Duration) {
	defer d.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.poll(ctx); err != nil && ctx.Err() == nil {
				log.Printf("warning: polling %s: %v", d.path, err)
			}
		}
	}
}

type change struct {
	path    string
	version int64
	origin  Origin
}

// poll publishes every row written since the last poll, one batch per run
// of rows sharing an origin.
func (d *SQLiteDrive) poll(ctx context.Context) error {
	d.pollMu.Lock()
	defer d.pollMu.Unlock()

	rows, err := d.db.QueryContext(ctx,
		`SELECT path, version, writer, wversion FROM kv WHERE version > ? ORDER BY version`, d.lastSeen)
	if err != nil {
		return fmt.Errorf("polling changes: %w", err)
	}
	var changes []change
	for rows.Next() {
		var c change
		var wv int64
		if err := rows.Scan(&c.path, &c.version, &c.origin.Writer, &wv); err != nil {
			rows.Close()
			return fmt.Errorf("polling changes: %w", err)
		}
		c.origin.Version = uint64(wv)
		changes = append(changes, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("polling changes: %w", err)
	}

	for i := 0; i < len(changes); {
		j := i
		var paths []string
		for j < len(changes) && changes[j].origin == changes[i].origin {
			paths = append(paths, changes[j].path)
			j++
		}
		d.hub.publish(Group(paths, changes[i].origin))
		d.lastSeen = changes[j-1].version
		i = j
	}
	return nil
}

// Close stops polling and closes the database.
func (d *SQLiteDrive) Close() error {
	d.cancel()
	d.wg.Wait()
	d.hub.close()
	return d.db.Close()
}
