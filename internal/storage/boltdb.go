package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/berrythewa/clipdeck/internal/types"
	"github.com/berrythewa/clipdeck/pkg/compression"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"
)

const (
	historyBucket = "history"
	metaBucket    = "meta"

	savedAtKey = "saved_at"
)

// ErrClosed is returned by operations on a closed storage
var ErrClosed = errors.New("storage is closed")

// HistoryStorage persists history snapshots
type HistoryStorage interface {
	SaveHistory(entries []types.ClipboardEntry) error
	LoadHistory() ([]types.ClipboardEntry, error)
	Stats() (Stats, error)
	Close() error
}

// Stats describes the persisted snapshot
type Stats struct {
	Entries int       `json:"entries"`
	Bytes   int64     `json:"bytes"`
	SavedAt time.Time `json:"saved_at"`
	Path    string    `json:"path"`
}

// BoltStorage implements persistent storage for clipboard history using BoltDB
type BoltStorage struct {
	mu     sync.Mutex
	db     *bbolt.DB
	path   string
	logger *zap.Logger
}

// StorageConfig holds configuration for BoltStorage initialization
type StorageConfig struct {
	DBPath string
	Logger *zap.Logger
}

// NewBoltStorage opens (or creates) the database and its buckets
func NewBoltStorage(config StorageConfig) (*BoltStorage, error) {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(config.DBPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bbolt.Open(config.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{historyBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("BoltStorage initialized", zap.String("db_path", config.DBPath))

	return &BoltStorage{
		db:     db,
		path:   config.DBPath,
		logger: logger,
	}, nil
}

func positionKey(i int) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(i))
	return k
}

// SaveHistory replaces the stored snapshot. Entries keep their order.
func (s *BoltStorage) SaveHistory(entries []types.ClipboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(historyBucket)); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to reset history bucket: %w", err)
		}
		b, err := tx.CreateBucket([]byte(historyBucket))
		if err != nil {
			return fmt.Errorf("failed to create history bucket: %w", err)
		}

		for i := range entries {
			encoded, err := json.Marshal(&entries[i])
			if err != nil {
				return fmt.Errorf("failed to marshal entry %s: %w", entries[i].ID, err)
			}
			value, err := compression.Compress(encoded)
			if err != nil {
				return fmt.Errorf("failed to compress entry %s: %w", entries[i].ID, err)
			}
			if err := b.Put(positionKey(i), value); err != nil {
				return err
			}
		}

		now, _ := time.Now().UTC().MarshalText()
		return tx.Bucket([]byte(metaBucket)).Put([]byte(savedAtKey), now)
	})
}

// LoadHistory returns the stored snapshot in its saved order. Entries that
// cannot be decoded are skipped.
func (s *BoltStorage) LoadHistory() ([]types.ClipboardEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}

	var entries []types.ClipboardEntry
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(historyBucket)).ForEach(func(k, v []byte) error {
			raw, err := compression.Decompress(v)
			if err != nil {
				s.logger.Warn("Failed to decompress entry", zap.Binary("key", k), zap.Error(err))
				return nil
			}
			var entry types.ClipboardEntry
			if err := json.Unmarshal(raw, &entry); err != nil {
				s.logger.Warn("Failed to unmarshal entry", zap.Binary("key", k), zap.Error(err))
				return nil
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	s.logger.Debug("Loaded history", zap.Int("entries", len(entries)))
	return entries, nil
}

// Stats reports the size of the stored snapshot
func (s *BoltStorage) Stats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return Stats{}, ErrClosed
	}

	st := Stats{Path: s.path}
	err := s.db.View(func(tx *bbolt.Tx) error {
		err := tx.Bucket([]byte(historyBucket)).ForEach(func(k, v []byte) error {
			st.Entries++
			st.Bytes += int64(len(k) + len(v))
			return nil
		})
		if err != nil {
			return err
		}
		if raw := tx.Bucket([]byte(metaBucket)).Get([]byte(savedAtKey)); raw != nil {
			_ = st.SavedAt.UnmarshalText(raw)
		}
		return nil
	})
	return st, err
}

// Close closes the database
func (s *BoltStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
