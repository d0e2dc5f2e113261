package spill

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"github.com/nestauk/createch/internal/similarity"
	bolt "go.etcd.io/bbolt"
)

// DefaultScanBatch is the number of pairs handed to a Scan callback at once.
const DefaultScanBatch = 10_000_000

const pairSize = 16

var bucketPairs = []byte("pairs")

// ErrCorruptChunk is returned when a stored chunk cannot be decoded.
var ErrCorruptChunk = errors.New("corrupt spilled chunk")

// Store is an append-only on-disk log of similarity chunks.
type Store struct {
	db     *bolt.DB
	chunks int
	pairs  int
}

// OpenStore creates an empty chunk store at path. A file left at path by an
// earlier run is removed first.
func OpenStore(path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to remove stale spill store: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, NoSync: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open spill store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketPairs)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create spill bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close spill store: %w", err)
	}
	return nil
}

// Chunks returns the number of chunks appended through this handle.
func (s *Store) Chunks() int { return s.chunks }

// Pairs returns the number of pairs appended through this handle.
func (s *Store) Pairs() int { return s.pairs }

// Append persists a chunk after all previously appended ones.
func (s *Store) Append(chunk similarity.Chunk) error {
	value := encodePairs(chunk.Pairs)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPairs)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to append chunk %d: %w", chunk.Seq, err)
	}
	s.chunks++
	s.pairs += len(chunk.Pairs)
	return nil
}

// Scan replays all stored pairs in append order, at most batchSize at a
// time. A non-positive batchSize uses DefaultScanBatch. The slice passed to
// fn is reused between calls.
func (s *Store) Scan(batchSize int, fn func([]similarity.Pair) error) error {
	if batchSize <= 0 {
		batchSize = DefaultScanBatch
	}

	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketPairs)
		if b == nil {
			return nil
		}

		batch := make([]similarity.Pair, 0, min(batchSize, max(s.pairs, 1)))
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(v)%pairSize != 0 {
				return fmt.Errorf("%w: key %x has %d bytes", ErrCorruptChunk, k, len(v))
			}
			for off := 0; off < len(v); off += pairSize {
				batch = append(batch, decodePair(v[off:off+pairSize]))
				if len(batch) == batchSize {
					if err := fn(batch); err != nil {
						return err
					}
					batch = batch[:0]
				}
			}
		}
		if len(batch) > 0 {
			return fn(batch)
		}
		return nil
	})
}

func encodePairs(pairs []similarity.Pair) []byte {
	buf := make([]byte, len(pairs)*pairSize)
	for i, p := range pairs {
		off := i * pairSize
		binary.BigEndian.PutUint32(buf[off:], uint32(p.Left))
		binary.BigEndian.PutUint32(buf[off+4:], uint32(p.Right))
		binary.BigEndian.PutUint64(buf[off+8:], math.Float64bits(p.Score))
	}
	return buf
}

func decodePair(b []byte) similarity.Pair {
	return similarity.Pair{
		Left:  int(binary.BigEndian.Uint32(b)),
		Right: int(binary.BigEndian.Uint32(b[4:])),
		Score: math.Float64frombits(binary.BigEndian.Uint64(b[8:])),
	}
}
