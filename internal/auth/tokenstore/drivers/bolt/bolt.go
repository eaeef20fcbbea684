// Package bolt is a tokenstore backed by a single bbolt file. It suits
// single-node deployments that need sessions to survive a restart without
// running Redis.
package bolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/accounts/internal/auth/tokenstore"
	bbolt "go.etcd.io/bbolt"
)

var bucket = []byte("tokens")

// record is the on-disk envelope. Exp is unix nanoseconds; zero never expires.
type record struct {
	V   string `json:"v"`
	Exp int64  `json:"exp,omitempty"`
}

func (r record) expired(now time.Time) bool {
	return r.Exp != 0 && now.UnixNano() >= r.Exp
}

type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

var (
	_ tokenstore.Store  = (*Store)(nil)
	_ tokenstore.Purger = (*Store)(nil)
)

// Open opens or creates the database file at path.
func Open(path string) (*Store, error) {
	return OpenWithClock(path, time.Now)
}

// OpenWithClock is Open with an injectable clock for expiry.
func OpenWithClock(path string, now func() time.Time) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bolt: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt: create bucket: %w", err)
	}

	return &Store{db: db, now: now}, nil
}

func (s *Store) Put(_ context.Context, key, value string, ttl time.Duration) error {
	r := record{V: value}
	if ttl > 0 {
		r.Exp = s.now().Add(ttl).UnixNano()
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.update(func(b *bbolt.Bucket) error {
		return b.Put([]byte(key), raw)
	})
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	var out string
	err := s.view(func(b *bbolt.Bucket) error {
		r, ok, err := s.load(b, key)
		if err != nil {
			return err
		}
		if !ok {
			return tokenstore.ErrNotFound
		}
		out = r.V
		return nil
	})
	return out, err
}

// TakeOnce reads and deletes inside one write transaction. bbolt allows a
// single writer at a time so concurrent callers are serialised.
func (s *Store) TakeOnce(_ context.Context, key string) (string, error) {
	var out string
	err := s.update(func(b *bbolt.Bucket) error {
		r, ok, err := s.load(b, key)
		if err != nil {
			return err
		}
		if err := b.Delete([]byte(key)); err != nil {
			return err
		}
		if !ok {
			return tokenstore.ErrNotFound
		}
		out = r.V
		return nil
	})
	if errors.Is(err, tokenstore.ErrNotFound) {
		return "", err
	}
	return out, err
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.update(func(b *bbolt.Bucket) error {
		return b.Delete([]byte(key))
	})
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	var found bool
	err := s.view(func(b *bbolt.Bucket) error {
		_, ok, err := s.load(b, key)
		found = ok
		return err
	})
	return found, err
}

// PurgeExpired removes expired entries and returns how many were dropped.
func (s *Store) PurgeExpired(ctx context.Context) (int, error) {
	now := s.now()
	removed := 0

	err := s.update(func(b *bbolt.Bucket) error {
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var r record
			if err := json.Unmarshal(v, &r); err != nil || r.expired(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *Store) Ping(context.Context) error {
	return s.view(func(*bbolt.Bucket) error { return nil })
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) view(fn func(*bbolt.Bucket) error) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(bucket))
	})
	return mapClosed(err)
}

func (s *Store) update(fn func(*bbolt.Bucket) error) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return fn(tx.Bucket(bucket))
	})
	return mapClosed(err)
}

// load decodes key. Expired or unreadable entries are reported as absent.
func (s *Store) load(b *bbolt.Bucket, key string) (record, bool, error) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return record{}, false, nil
	}

	var r record
	if err := json.Unmarshal(raw, &r); err != nil {
		return record{}, false, nil
	}
	if r.expired(s.now()) {
		return record{}, false, nil
	}
	return r, true, nil
}

func mapClosed(err error) error {
	if errors.Is(err, bbolt.ErrDatabaseNotOpen) {
		return tokenstore.ErrClosed
	}
	return err
}
