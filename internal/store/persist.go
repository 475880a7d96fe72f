package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

var errNotArray = errors.New("collection is not a JSON array")

func (s *Store) loadLocked(ctx context.Context) {
	s.tasks = loadCollection(ctx, s, CollectionTasks, DecodeTasks)
	s.documents = loadCollection(ctx, s, CollectionDocuments, DecodeDocuments)
	s.folders = loadCollection(ctx, s, CollectionFolders, DecodeFolders)
	s.repairReferencesLocked()

	s.log.Debug("store loaded",
		zap.Int("tasks", len(s.tasks)),
		zap.Int("documents", len(s.documents)),
		zap.Int("folders", len(s.folders)))
}

func loadCollection[T any](ctx context.Context, s *Store, c Collection, decode func([]byte) ([]T, []error, error)) []T {
	key := Key(s.keyPrefix, c)

	b, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Warn("read collection failed, starting empty", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if !ok {
		return []T{}
	}

	items, dropped, err := decode(b)
	if err != nil {
		s.log.Warn("invalid collection blob, starting empty", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	for _, derr := range dropped {
		s.log.Warn("dropped invalid entry", zap.String("key", key), zap.Error(derr))
	}
	return items
}

// repairReferencesLocked clears references that point at entities which no
// longer exist, so the in-memory state always satisfies the integrity rules.
func (s *Store) repairReferencesLocked() {
	docs := make(map[string]bool, len(s.documents))
	for _, d := range s.documents {
		docs[d.ID] = true
	}
	folders := make(map[string]bool, len(s.folders))
	for _, f := range s.folders {
		folders[f.ID] = true
	}

	for i := range s.tasks {
		t := &s.tasks[i]
		for _, did := range append([]string(nil), t.DocumentIDs...) {
			if !docs[did] {
				t.RemoveDocument(did)
				s.log.Warn("dropped dangling document reference", zap.String("task", t.ID), zap.String("document", did))
			}
		}
	}
	for i := range s.documents {
		d := &s.documents[i]
		if d.FolderID != nil && !folders[*d.FolderID] {
			s.log.Warn("unfiled document with missing folder", zap.String("document", d.ID), zap.String("folder", *d.FolderID))
			d.FolderID = nil
		}
	}
}

// DecodeTasks parses a mirrored task collection. A blob that is not an array
// is an error; individual entries that fail validation are dropped and
// reported.
func DecodeTasks(b []byte) ([]model.Task, []error, error) {
	return decodeArray(b, func(t *model.Task) error {
		t.ID = strings.TrimSpace(t.ID)
		if t.ID == "" {
			return errors.New("task without id")
		}
		ids := t.DocumentIDs
		t.DocumentIDs = nil
		for _, id := range ids {
			t.AddDocument(id)
		}
		return nil
	}, func(t model.Task) string { return t.ID })
}

func DecodeDocuments(b []byte) ([]model.Document, []error, error) {
	return decodeArray(b, func(d *model.Document) error {
		d.ID = strings.TrimSpace(d.ID)
		if d.ID == "" {
			return errors.New("document without id")
		}
		if d.Content.Kind == "" {
			d.Content = model.TextContent("")
		}
		if d.FolderID != nil && strings.TrimSpace(*d.FolderID) == "" {
			d.FolderID = nil
		}
		switch {
		case d.CreatedAt.IsZero() && d.UpdatedAt.IsZero():
			return fmt.Errorf("document %s without timestamps", d.ID)
		case d.CreatedAt.IsZero():
			d.CreatedAt = d.UpdatedAt
		case d.UpdatedAt.IsZero() || d.UpdatedAt.Before(d.CreatedAt):
			d.UpdatedAt = d.CreatedAt
		}
		return nil
	}, func(d model.Document) string { return d.ID })
}

func DecodeFolders(b []byte) ([]model.Folder, []error, error) {
	return decodeArray(b, func(f *model.Folder) error {
		f.ID = strings.TrimSpace(f.ID)
		if f.ID == "" {
			return errors.New("folder without id")
		}
		return nil
	}, func(f model.Folder) string { return f.ID })
}

func decodeArray[T any](b []byte, validate func(*T) error, idOf func(T) string) ([]T, []error, error) {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" || trimmed == "null" {
		return []T{}, nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errNotArray, err)
	}

	out := make([]T, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	var dropped []error
	for i, item := range raw {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			dropped = append(dropped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		if err := validate(&v); err != nil {
			dropped = append(dropped, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		id := idOf(v)
		if seen[id] {
			dropped = append(dropped, fmt.Errorf("entry %d: duplicate id %s", i, id))
			continue
		}
		seen[id] = true
		out = append(out, v)
	}
	return out, dropped, nil
}

// persistLocked re-serializes each named collection in full. Failures are
// logged and counted; callers never see them.
func (s *Store) persistLocked(cs ...Collection) {
	for _, c := range cs {
		var (
			b   []byte
			err error
		)
		switch c {
		case CollectionTasks:
			b, err = json.Marshal(s.tasks)
		case CollectionDocuments:
			b, err = json.Marshal(s.documents)
		case CollectionFolders:
			b, err = json.Marshal(s.folders)
		default:
			err = fmt.Errorf("unknown collection %q", c)
		}
		key := Key(s.keyPrefix, c)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
			err = s.kv.Set(ctx, key, b)
			cancel()
		}
		if err != nil {
			s.persistErrors.Add(1)
			s.log.Warn("mirror write failed", zap.String("key", key), zap.Error(err))
		}
	}
}
