package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"recipe_site/internal/store"
)

var ErrSignedOut = errors.New("cloud sync: not signed in")

// DocumentStore is the remote copy: one document per user holding the
// synced keys. Load returns a nil map when the user has no document.
// Save merges the given keys into the document, creating it if needed.
type DocumentStore interface {
	Load(ctx context.Context, uid string) (map[string]json.RawMessage, error)
	Save(ctx context.Context, uid string, data map[string]json.RawMessage) error
}

// LocalStore is the client-local side.
type LocalStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Subscribe() (<-chan store.Change, func())
}

// Syncer mirrors store.SyncKeys between the local store and a remote
// document. Remote failures are logged and never retried.
type Syncer struct {
	remote DocumentStore
	local  LocalStore
	log    *zap.SugaredLogger

	mu     sync.Mutex
	uid    string
	synced map[string][]byte
	wg     sync.WaitGroup
}

func New(remote DocumentStore, local LocalStore, sugar *zap.SugaredLogger) *Syncer {
	return &Syncer{remote: remote, local: local, log: sugar, synced: make(map[string][]byte)}
}

func (s *Syncer) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uid
}

func isSyncKey(key string) bool {
	for _, k := range store.SyncKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SignIn pulls the user's document over the local keys, then pushes the
// merged state back.
func (s *Syncer) SignIn(ctx context.Context, uid string) error {
	if uid == "" {
		return errors.New("cloud sync: empty user id")
	}
	s.mu.Lock()
	s.uid = uid
	s.synced = make(map[string][]byte)
	s.mu.Unlock()

	if _, err := s.Pull(ctx); err != nil {
		return err
	}
	return s.Push(ctx)
}

func (s *Syncer) SignOut() {
	s.mu.Lock()
	s.uid = ""
	s.synced = make(map[string][]byte)
	s.mu.Unlock()
}

// Pull overwrites every local key present in the remote document and
// returns the keys written. Keys absent remotely are left alone.
func (s *Syncer) Pull(ctx context.Context) ([]string, error) {
	uid := s.UserID()
	if uid == "" {
		return nil, ErrSignedOut
	}

	doc, err := s.remote.Load(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load cloud document: %w", err)
	}
	if doc == nil {
		if s.log != nil {
			s.log.Infow("no cloud data yet; keeping local data", "uid", uid)
		}
		return nil, nil
	}

	var pulled []string
	for _, key := range store.SyncKeys {
		v, ok := doc[key]
		if !ok || len(v) == 0 || string(v) == "null" {
			continue
		}
		s.remember(key, v)
		if err := s.local.Set(ctx, key, v); err != nil {
			return pulled, fmt.Errorf("write local %s: %w", key, err)
		}
		pulled = append(pulled, key)
	}
	if s.log != nil {
		s.log.Infow("pulled cloud data", "uid", uid, "keys", pulled)
	}
	return pulled, nil
}

// Push writes every local sync key that exists.
func (s *Syncer) Push(ctx context.Context) error {
	uid := s.UserID()
	if uid == "" {
		return ErrSignedOut
	}

	data := make(map[string]json.RawMessage)
	for _, key := range store.SyncKeys {
		v, ok, err := s.local.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("read local %s: %w", key, err)
		}
		if !ok || !json.Valid(v) {
			continue
		}
		data[key] = v
	}
	return s.save(ctx, uid, data)
}

func (s *Syncer) save(ctx context.Context, uid string, data map[string]json.RawMessage) error {
	if len(data) == 0 {
		return nil
	}
	if err := s.remote.Save(ctx, uid, data); err != nil {
		return fmt.Errorf("save cloud document: %w", err)
	}
	for k, v := range data {
		s.remember(k, v)
	}
	return nil
}

func (s *Syncer) remember(key string, v []byte) {
	s.mu.Lock()
	s.synced[key] = append([]byte(nil), v...)
	s.mu.Unlock()
}

func (s *Syncer) alreadySynced(key string, v []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.synced[key]
	return ok && bytes.Equal(prev, v)
}

// PushAsync pushes one change in the background. Errors are logged.
func (s *Syncer) PushAsync(ctx context.Context, c store.Change) {
	uid := s.UserID()
	if uid == "" || !isSyncKey(c.Key) || c.Value == nil || !json.Valid(c.Value) {
		return
	}
	if s.alreadySynced(c.Key, c.Value) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.save(ctx, uid, map[string]json.RawMessage{c.Key: c.Value})
		if err != nil && s.log != nil {
			s.log.Warnw("cloud sync failed", "uid", uid, "key", c.Key, "error", err)
		}
	}()
}

// Run pushes local changes until ctx is done.
func (s *Syncer) Run(ctx context.Context) {
	changes, cancel := s.local.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case c, ok := <-changes:
			if !ok {
				return
			}
			s.PushAsync(ctx, c)
		}
	}
}

// Wait blocks until in-flight pushes finish.
func (s *Syncer) Wait() {
	s.wg.Wait()
}
