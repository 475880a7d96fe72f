// Package store holds the task, document and folder collections in memory,
// keeps references between them consistent, and mirrors each collection to a
// durable key-value backend on every change.
package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
)

var ErrDocumentNotFound = errors.New("document not found")

const (
	DefaultKeyPrefix    = "todoDesk_"
	defaultWriteTimeout = 5 * time.Second
)

type Collection string

const (
	CollectionTasks     Collection = "tasks"
	CollectionDocuments Collection = "documents"
	CollectionFolders   Collection = "folders"
)

var Collections = []Collection{CollectionTasks, CollectionDocuments, CollectionFolders}

// Key is the storage key a collection is mirrored under.
func Key(prefix string, c Collection) string {
	return prefix + string(c)
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator replaces the default "<prefix>_<uuid>" generator.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newIDFn = fn
		}
	}
}

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		s.keyPrefix = prefix
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

type Store struct {
	mu sync.RWMutex

	kv           storage.KV
	log          *zap.Logger
	clock        Clock
	newIDFn      func(prefix string) string
	keyPrefix    string
	writeTimeout time.Duration

	tasks     []model.Task
	documents []model.Document
	folders   []model.Folder

	persistErrors atomic.Int64
}

// New builds a Store over kv and loads whatever the backend already holds.
// Missing or invalid collections start empty.
func New(ctx context.Context, kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		log:          zap.NewNop(),
		clock:        RealClock{},
		newIDFn:      defaultID,
		keyPrefix:    DefaultKeyPrefix,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.loadLocked(ctx)
	s.mu.Unlock()
	return s
}

// Reload discards in-memory state and reads all collections from storage again.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

// PersistErrors counts mirror writes that failed since construction.
func (s *Store) PersistErrors() int64 {
	return s.persistErrors.Load()
}

func (s *Store) KeyPrefix() string {
	return s.keyPrefix
}

func defaultID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// newIDLocked never hands out an id already used by any collection.
func (s *Store) newIDLocked(prefix string) string {
	for {
		id := s.newIDFn(prefix)
		if !s.idTakenLocked(id) {
			return id
		}
	}
}

func (s *Store) idTakenLocked(id string) bool {
	if s.taskIndexLocked(id) >= 0 || s.documentIndexLocked(id) >= 0 || s.folderIndexLocked(id) >= 0 {
		return true
	}
	return false
}

func (s *Store) taskIndexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) documentIndexLocked(id string) int {
	for i := range s.documents {
		if s.documents[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) folderIndexLocked(id string) int {
	for i := range s.folders {
		if s.folders[i].ID == id {
			return i
		}
	}
	return -1
}
