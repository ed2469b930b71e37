// Package bboltstorage keeps http cache entries in a bbolt database.
package bboltstorage

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"go.etcd.io/bbolt"

	"fknsrs.biz/p/rutube/internal/httpcache"
)

var bucketName = []byte("cache")

type Storage struct {
	db *bbolt.DB
}

func New(db *bbolt.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Get(key string) (*httpcache.Entry, error) {
	var e *httpcache.Entry

	if err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		d := b.Get([]byte(key))
		if d == nil {
			return nil
		}

		// d is only valid for the life of the transaction, but gob copies
		// everything it decodes
		var v httpcache.Entry
		if err := gob.NewDecoder(bytes.NewReader(d)).Decode(&v); err != nil {
			return err
		}

		e = &v

		return nil
	}); err != nil {
		return nil, fmt.Errorf("bboltstorage.Storage.Get: %w", err)
	}

	return e, nil
}

func (s *Storage) Put(key string, e *httpcache.Entry) error {
	buf := bytes.NewBuffer(nil)
	if err := gob.NewEncoder(buf).Encode(e); err != nil {
		return fmt.Errorf("bboltstorage.Storage.Put: %w", err)
	}

	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return err
		}

		return b.Put([]byte(key), buf.Bytes())
	}); err != nil {
		return fmt.Errorf("bboltstorage.Storage.Put: %w", err)
	}

	return nil
}

func (s *Storage) Delete(key string) error {
	if err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return nil
		}

		return b.Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("bboltstorage.Storage.Delete: %w", err)
	}

	return nil
}
