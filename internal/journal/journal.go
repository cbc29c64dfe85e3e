// Package journal keeps a durable log of every line entered at the
// calculator prompt, across sessions.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketLines = "lines"

// ErrLocked is returned by Open when another process holds the journal.
var ErrLocked = errors.New("journal is locked by another process")

// Entry is one journaled input line.
type Entry struct {
	Seq     int       `json:"-"`
	Line    string    `json:"line"`
	Session string    `json:"session"`
	Time    time.Time `json:"time"`
}

// Journal is a bbolt-backed, append-only log of input lines.
type Journal struct {
	db      *bolt.DB
	session string
	now     func() time.Time
}

// Open opens or creates the journal at path. Entries added through the
// returned Journal are tagged with session.
func Open(path, session string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketLines))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing journal: %w", err)
	}

	return &Journal{db: db, session: session, now: time.Now}, nil
}

// Session returns the session id entries are tagged with.
func (j *Journal) Session() string {
	return j.session
}

// Add appends line and returns its sequence number.
func (j *Journal) Add(line string) (int, error) {
	data, err := json.Marshal(Entry{Line: line, Session: j.session, Time: j.now()})
	if err != nil {
		return 0, err
	}

	var seq uint64
	err = j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketLines))
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), data)
	})
	return int(seq), err
}

// Recent returns up to n of the latest entries, oldest first. n <= 0
// returns every entry.
func (j *Journal) Recent(n int) ([]Entry, error) {
	var entries []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketLines)).Cursor()
		for k, v := c.Last(); k != nil && (n <= 0 || len(entries) < n); k, v = c.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decoding journal entry %d: %w", unmarshalSeq(k), err)
			}
			e.Seq = int(unmarshalSeq(k))
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries, nil
}

// Len returns the number of entries.
func (j *Journal) Len() (int, error) {
	var n int
	err := j.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(bucketLines)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
