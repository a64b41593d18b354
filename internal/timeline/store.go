package timeline

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/feedcache/internal/entity"
)

var statusesBucket = []byte("statuses")

// userStore is the per-user keyed object store backing Timeline-posts-<user>.
// It is a pure cache: losing the file only forces a re-fetch, never loses
// user data. Only the manager opens and closes these.
type userStore struct {
	db *bolt.DB
}

func openUserStore(path string, timeout time.Duration) (*userStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(statusesBucket)
		return createErr
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &userStore{db: db}, nil
}

func (s *userStore) Close() error {
	return s.db.Close()
}

// PutStatuses writes a batch of full status bodies keyed by id.
func (s *userStore) PutStatuses(statuses []*entity.Status) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(statusesBucket)
		for _, st := range statuses {
			data, err := json.Marshal(st)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(st.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// Status returns the stored body for id. A missing key or an undecodable
// value is a cache miss, not an error.
func (s *userStore) Status(id string) (*entity.Status, error) {
	var st *entity.Status
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(statusesBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return nil
		}
		var decoded entity.Status
		if err := json.Unmarshal(data, &decoded); err != nil {
			return nil
		}
		st = &decoded
		return nil
	})
	return st, err
}

// Statuses returns the stored bodies for ids, in the given order, skipping
// misses.
func (s *userStore) Statuses(ids []string) ([]*entity.Status, error) {
	var statuses []*entity.Status
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(statusesBucket)
		for _, id := range ids {
			data := b.Get([]byte(id))
			if data == nil {
				continue
			}
			var decoded entity.Status
			if err := json.Unmarshal(data, &decoded); err != nil {
				continue
			}
			statuses = append(statuses, &decoded)
		}
		return nil
	})
	return statuses, err
}

// Empty drops every stored body but keeps the store itself.
func (s *userStore) Empty() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(statusesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(statusesBucket)
		return err
	})
}
