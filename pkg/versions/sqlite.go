package versions

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SQLiteStore persists variants in a SQLite database. Subscribers receive a
// snapshot after every write made through the store and, when watching is
// enabled, after writes made to the database file by other processes.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger

	publishMu sync.Mutex
	mu        sync.Mutex
	subs      map[int]SnapshotFunc
	nextSub   int
	last      []Variant

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(s *SQLiteStore)

// WithSQLiteLogger sets the store's logger.
func WithSQLiteLogger(logger *zap.Logger) (opt SQLiteOption) {
	opt = func(s *SQLiteStore) {
		s.logger = logger
	}
	return opt
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, opts ...SQLiteOption) (s *SQLiteStore, err error) {
	var db *sql.DB
	db, err = sql.Open("sqlite3", path)
	if err != nil {
		err = errors.Wrapf(err, "failed to open variant database: %s", path)
		return s, err
	}

	s = &SQLiteStore{
		db:     db,
		path:   path,
		logger: zap.NewNop(),
		subs:   make(map[int]SnapshotFunc),
	}
	for _, opt := range opts {
		opt(s)
	}

	// WAL lets readers in other processes see committed writes while we write
	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		_ = db.Close()
		err = errors.Wrap(err, "failed to enable WAL")
		return nil, err
	}

	err = s.initSchema()
	if err != nil {
		_ = db.Close()
		err = errors.Wrap(err, "failed to initialise variant schema")
		return nil, err
	}

	return s, err
}

func (s *SQLiteStore) initSchema() (err error) {
	schema := `
	CREATE TABLE IF NOT EXISTS variants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		content TEXT NOT NULL,
		job_context TEXT,
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_variants_created ON variants(created_at);
	`
	_, err = s.db.Exec(schema)
	return err
}

// Watch starts watching the database file for changes made by other
// processes. It is a no-op when already watching.
func (s *SQLiteStore) Watch() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return err
	}

	var w *fsnotify.Watcher
	w, err = fsnotify.NewWatcher()
	if err != nil {
		err = errors.Wrap(err, "failed to create file watcher")
		return err
	}

	dir := filepath.Dir(s.path)
	err = w.Add(dir)
	if err != nil {
		_ = w.Close()
		err = errors.Wrapf(err, "failed to watch directory: %s", dir)
		return err
	}

	s.watcher = w
	s.done = make(chan struct{})
	s.wg.Add(1)
	go s.watchLoop(w, s.done)

	return err
}

func (s *SQLiteStore) watchLoop(w *fsnotify.Watcher, done chan struct{}) {
	defer s.wg.Done()

	base := filepath.Base(s.path)
	for {
		select {
		case <-done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !strings.HasPrefix(filepath.Base(event.Name), base) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			s.publish(context.Background())
		case werr, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("variant database watcher error", zap.Error(werr))
		}
	}
}

// Create implements Store.
func (s *SQLiteStore) Create(ctx context.Context, v Variant) (id string, err error) {
	v.ID = uuid.NewString()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	var contentJSON, jobJSON []byte
	contentJSON, jobJSON, err = encodeVariant(v)
	if err != nil {
		return id, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO variants (id, name, content, job_context, is_default, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, string(contentJSON), nullableString(jobJSON), v.IsDefault, v.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		err = errors.Wrap(err, "failed to insert variant")
		return id, err
	}

	id = v.ID
	s.publish(ctx)
	return id, err
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, id string) (v *Variant, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, job_context, is_default, created_at FROM variants WHERE id = ?`, id)

	var found Variant
	found, err = scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return v, err
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to read variant %s", id)
		return v, err
	}

	v = &found
	return v, err
}

// Update implements Store.
func (s *SQLiteStore) Update(ctx context.Context, id string, patch Patch) (err error) {
	var tx *sql.Tx
	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to begin transaction")
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		`SELECT id, name, content, job_context, is_default, created_at FROM variants WHERE id = ?`, id)

	var current Variant
	current, err = scanVariant(row)
	if errors.Is(err, sql.ErrNoRows) {
		err = &NotFoundError{ID: id}
		return err
	}
	if err != nil {
		err = errors.Wrapf(err, "failed to read variant %s", id)
		return err
	}

	updated := patch.apply(current)

	var contentJSON, jobJSON []byte
	contentJSON, jobJSON, err = encodeVariant(updated)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE variants SET name = ?, content = ?, job_context = ?, is_default = ? WHERE id = ?`,
		updated.Name, string(contentJSON), nullableString(jobJSON), updated.IsDefault, id)
	if err != nil {
		err = errors.Wrapf(err, "failed to update variant %s", id)
		return err
	}

	err = tx.Commit()
	if err != nil {
		err = errors.Wrap(err, "failed to commit variant update")
		return err
	}

	s.publish(ctx)
	return err
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) (err error) {
	var res sql.Result
	res, err = s.db.ExecContext(ctx, `DELETE FROM variants WHERE id = ?`, id)
	if err != nil {
		err = errors.Wrapf(err, "failed to delete variant %s", id)
		return err
	}

	var n int64
	n, err = res.RowsAffected()
	if err != nil {
		err = errors.Wrap(err, "failed to read affected rows")
		return err
	}
	if n == 0 {
		err = &NotFoundError{ID: id}
		return err
	}

	s.publish(ctx)
	return err
}

// List returns every variant in creation order.
func (s *SQLiteStore) List(ctx context.Context) (variants []Variant, err error) {
	var rows *sql.Rows
	rows, err = s.db.QueryContext(ctx,
		`SELECT id, name, content, job_context, is_default, created_at FROM variants ORDER BY created_at, rowid`)
	if err != nil {
		err = errors.Wrap(err, "failed to query variants")
		return variants, err
	}
	defer rows.Close()

	variants = make([]Variant, 0)
	for rows.Next() {
		var v Variant
		v, err = scanVariant(rows)
		if err != nil {
			err = errors.Wrap(err, "failed to scan variant")
			return variants, err
		}
		variants = append(variants, v)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to iterate variants")
		return variants, err
	}

	return variants, err
}

// Subscribe implements Store.
func (s *SQLiteStore) Subscribe(fn SnapshotFunc) (unsubscribe func()) {
	s.publishMu.Lock()
	snapshot, err := s.List(context.Background())
	if err != nil {
		s.logger.Warn("failed to load initial variant snapshot", zap.Error(err))
		snapshot = make([]Variant, 0)
	}

	s.mu.Lock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	s.last = snapshot
	s.mu.Unlock()
	s.publishMu.Unlock()

	fn(cloneVariants(snapshot))

	unsubscribe = func() {
		s.mu.Lock()
		delete(s.subs, key)
		s.mu.Unlock()
	}
	return unsubscribe
}

// Close stops the watcher and closes the database.
func (s *SQLiteStore) Close() (err error) {
	s.mu.Lock()
	w := s.watcher
	done := s.done
	s.watcher = nil
	s.subs = make(map[int]SnapshotFunc)
	s.mu.Unlock()

	if w != nil {
		close(done)
		_ = w.Close()
		s.wg.Wait()
	}

	err = s.db.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to close variant database")
		return err
	}
	return err
}

// publish reloads the variant list and delivers it when it changed since the
// last delivery.
func (s *SQLiteStore) publish(ctx context.Context) {
	s.publishMu.Lock()
	snapshot, err := s.List(ctx)
	if err != nil {
		s.publishMu.Unlock()
		s.logger.Warn("failed to reload variants", zap.Error(err))
		return
	}

	s.mu.Lock()
	if len(s.subs) == 0 || cmp.Equal(s.last, snapshot) {
		s.mu.Unlock()
		s.publishMu.Unlock()
		return
	}
	s.last = snapshot
	subs := make([]SnapshotFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	s.publishMu.Unlock()

	s.logger.Debug("publishing variant snapshot", zap.Int("variants", len(snapshot)))
	notify(subs, snapshot)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVariant(row rowScanner) (v Variant, err error) {
	var contentJSON string
	var jobJSON sql.NullString
	var createdAt string

	err = row.Scan(&v.ID, &v.Name, &contentJSON, &jobJSON, &v.IsDefault, &createdAt)
	if err != nil {
		return v, err
	}

	err = json.Unmarshal([]byte(contentJSON), &v.Content)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse content of variant %s", v.ID)
		return v, err
	}

	if jobJSON.Valid && jobJSON.String != "" {
		var jc JobContext
		err = json.Unmarshal([]byte(jobJSON.String), &jc)
		if err != nil {
			err = errors.Wrapf(err, "failed to parse job context of variant %s", v.ID)
			return v, err
		}
		v.JobContext = &jc
	}

	v.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse creation time of variant %s", v.ID)
		return v, err
	}

	return v, err
}

func encodeVariant(v Variant) (contentJSON, jobJSON []byte, err error) {
	contentJSON, err = json.Marshal(v.Content)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal variant content")
		return contentJSON, jobJSON, err
	}

	if v.JobContext != nil {
		jobJSON, err = json.Marshal(v.JobContext)
		if err != nil {
			err = errors.Wrap(err, "failed to marshal job context")
			return contentJSON, jobJSON, err
		}
	}

	return contentJSON, jobJSON, err
}

func nullableString(b []byte) (ns sql.NullString) {
	if b == nil {
		return ns
	}
	ns = sql.NullString{String: string(b), Valid: true}
	return ns
}
