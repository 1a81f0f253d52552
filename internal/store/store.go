package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Keys persisted by the site.
const (
	KeyMealPlan     = "mealPlan"
	KeySavedRecipes = "savedRecipes"
	KeyShoppingList = "shoppingListData"
)

// SyncKeys are the keys mirrored to the cloud.
var SyncKeys = []string{KeyMealPlan, KeySavedRecipes, KeyShoppingList}

// Change describes a write to one key. External is set for writes made by
// another process on the same database file. Value is nil for deletes.
type Change struct {
	Key      string
	Value    []byte
	External bool
}

// Store is a string → JSON blob store backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.SugaredLogger

	// wmu orders this process's writes against refresh, so a row is never
	// seen at a version its own writer has not recorded yet.
	wmu sync.Mutex

	mu       sync.Mutex
	versions map[string]int64
	subs     map[int]chan Change
	nextSub  int
}

// Open opens (creating if needed) the store at path.
func Open(path string, sugar *zap.SugaredLogger) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := Init(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db:       db,
		path:     path,
		log:      sugar,
		versions: make(map[string]int64),
		subs:     make(map[int]chan Change),
	}
	current, err := s.snapshot(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for k, r := range current {
		s.versions[k] = r.version
	}
	return s, nil
}

// Init creates the schema.
func Init(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			version    INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) Path() string { return s.path }

// Get returns the raw value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key and notifies subscribers.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.wmu.Lock()
	var version int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			version = kv.version + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING version
	`, key, value).Scan(&version)
	if err != nil {
		s.wmu.Unlock()
		return fmt.Errorf("set %s: %w", key, err)
	}

	s.mu.Lock()
	s.versions[key] = version
	s.mu.Unlock()
	s.wmu.Unlock()

	s.publish(Change{Key: key, Value: value})
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.wmu.Lock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		s.wmu.Unlock()
		return fmt.Errorf("delete %s: %w", key, err)
	}

	s.mu.Lock()
	delete(s.versions, key)
	s.mu.Unlock()
	s.wmu.Unlock()

	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(Change{Key: key})
	}
	return nil
}

// Keys lists stored keys in order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// GetJSON decodes key into v and reports whether it did. Missing keys,
// read failures and malformed JSON all leave v untouched; the latter two
// are logged and never returned.
func (s *Store) GetJSON(ctx context.Context, key string, v any) bool {
	b, ok, err := s.Get(ctx, key)
	if err != nil {
		if s.log != nil {
			s.log.Warnw("store read failed; using default", "key", key, "error", err)
		}
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		if s.log != nil {
			s.log.Warnw("malformed stored value; using default", "key", key, "error", err)
		}
		return false
	}
	return true
}

func (s *Store) SetJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// Subscribe returns a channel of changes and a function that ends the
// subscription. Slow subscribers lose events rather than block writers.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Change, 16)
	s.subs[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Store) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- c:
		default:
			if s.log != nil {
				s.log.Warnw("dropping store change for slow subscriber", "key", c.Key)
			}
		}
	}
}

type row struct {
	version int64
	value   []byte
}

func (s *Store) snapshot(ctx context.Context) (map[string]row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, version, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	defer rows.Close()

	out := make(map[string]row)
	for rows.Next() {
		var (
			k string
			r row
		)
		if err := rows.Scan(&k, &r.version, &r.value); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out[k] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// refresh compares the table with the versions this process knows about
// and publishes the difference as external changes.
func (s *Store) refresh(ctx context.Context) error {
	s.wmu.Lock()
	current, err := s.snapshot(ctx)
	if err != nil {
		s.wmu.Unlock()
		return err
	}

	var changes []Change
	s.mu.Lock()
	for k, r := range current {
		if v, ok := s.versions[k]; ok && v == r.version {
			continue
		}
		s.versions[k] = r.version
		changes = append(changes, Change{Key: k, Value: r.value, External: true})
	}
	for k := range s.versions {
		if _, ok := current[k]; !ok {
			delete(s.versions, k)
			changes = append(changes, Change{Key: k, External: true})
		}
	}
	s.mu.Unlock()
	s.wmu.Unlock()

	for _, c := range changes {
		s.publish(c)
	}
	return nil
}
