// Package store persists partial templates and their generated programs in a
// bbolt database.
package store

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketPartial = "partial"
	bucketProgram = "program"
)

// ErrNoPartial is returned by (*Store).Partial when there is no such partial.
var ErrNoPartial = errors.New("no such partial")

// ErrNoProgram is returned by (*Store).Program when no program was saved.
var ErrNoProgram = errors.New("no such program")

// initDB holds the initializers run on every database that is opened.
var initDB = map[string]func(*bolt.Tx) error{
	"initialize partial table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketPartial))
		return err
	},
	"initialize program table": func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketProgram))
		return err
	},
}

type Store struct {
	db *bolt.DB
}

// Open opens the database at path, creating it if needed.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Partial gets the source of a partial.
func (s *Store) Partial(name string) (string, error) {
	var src string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketPartial)).Get([]byte(name))
		if v == nil {
			return ErrNoPartial
		}
		src = string(v)
		return nil
	})
	return src, err
}

// SetPartial saves the source of a partial.
func (s *Store) SetPartial(name, src string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPartial)).Put([]byte(name), []byte(src))
	})
}

// DelPartial deletes a partial and its program.
func (s *Store) DelPartial(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket([]byte(bucketPartial)).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket([]byte(bucketProgram)).Delete([]byte(name))
	})
}

// ForEachPartial calls f with every saved partial in name order, stopping at
// the first error.
func (s *Store) ForEachPartial(f func(name, src string) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPartial)).ForEach(func(k, v []byte) error {
			return f(string(k), string(v))
		})
	})
}

// Program gets the generated Go source saved for a partial.
func (s *Store) Program(name string) ([]byte, error) {
	var code []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketProgram)).Get([]byte(name))
		if v == nil {
			return ErrNoProgram
		}
		code = append([]byte(nil), v...)
		return nil
	})
	return code, err
}

// SetProgram saves the generated Go source of a partial.
func (s *Store) SetProgram(name string, code []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketProgram)).Put([]byte(name), code)
	})
}
