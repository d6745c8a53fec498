// Package catalog keeps a local history of pipeline runs in a bbolt
// database, one record per mesh/strategy pair, so results can be compared
// across invocations without re-reading artifact files.
package catalog

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// Record summarizes one completed mesh/strategy pair.
type Record struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Mesh      string    `json:"mesh"`
	Strategy  string    `json:"strategy"`
	Bins      int       `json:"bins"`
	Vertices  int       `json:"vertices"`
	MSETotal  float64   `json:"mse_total"`
	MAETotal  float64   `json:"mae_total"`
	MaxError  float64   `json:"max_error"`
	MeanError float64   `json:"mean_error"`
}

// Store is an open catalog database. It is safe for concurrent use; bbolt
// serializes writers internally.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the catalog at path. The timeout bounds the wait
// on a file lock held by another process.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing catalog: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores a record, assigning its ID, and its timestamp when unset.
// Keys come from the bucket sequence, so iteration order is insertion
// order.
func (s *Store) Append(rec Record) (Record, error) {
	rec.ID = uuid.NewString()
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		value, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), value)
	})
	if err != nil {
		return Record{}, fmt.Errorf("appending run record: %w", err)
	}
	return rec, nil
}

// List returns every record, newest first.
func (s *Store) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decoding record %x: %w", k, err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing run records: %w", err)
	}
	return out, nil
}

// Prune deletes the oldest records beyond keep and reports how many went.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(runsBucket)

		total := 0
		if err := b.ForEach(func(k, v []byte) error { total++; return nil }); err != nil {
			return err
		}
		excess := total - keep
		if excess <= 0 {
			return nil
		}

		// Collect the oldest keys first; deleting under a live cursor
		// repositions it.
		doomed := make([][]byte, 0, excess)
		c := b.Cursor()
		for k, _ := c.First(); k != nil && len(doomed) < excess; k, _ = c.Next() {
			doomed = append(doomed, append([]byte(nil), k...))
		}
		for _, k := range doomed {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		deleted = len(doomed)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("pruning run records: %w", err)
	}
	return deleted, nil
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
