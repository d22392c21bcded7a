// Package snapshot persists the last server-confirmed task collection
// in a local BoltDB file so the board renders immediately at startup.
// The snapshot is advisory: a missing or corrupt file is ignored and
// the first reload replaces whatever it provided.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/taskboard/client/domain"
)

var tasksBucket = []byte("tasks")

// Store wraps the BoltDB file.
type Store struct {
	db *bolt.DB
}

// Open initializes the snapshot file and its bucket.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(tasksBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// SaveTasks replaces the stored collection, keyed so iteration returns
// the collection's recency order.
func (s *Store) SaveTasks(tasks []domain.Task) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(tasksBucket); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(tasksBucket)
		if err != nil {
			return err
		}
		for i, task := range tasks {
			payload, err := json.Marshal(task)
			if err != nil {
				return err
			}
			key := []byte(fmt.Sprintf("%08d", i))
			if err := bucket.Put(key, payload); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadTasks returns the stored collection in its saved order. Rows
// that fail to decode are skipped.
func (s *Store) LoadTasks() ([]domain.Task, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	var tasks []domain.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(tasksBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var task domain.Task
			if err := json.Unmarshal(v, &task); err != nil {
				continue
			}
			tasks = append(tasks, task)
		}
		return nil
	})
	return tasks, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
