package store

import (
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

func (s *Store) Documents() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Document, len(s.documents))
	for i, d := range s.documents {
		out[i] = d.Clone()
	}
	return out
}

func (s *Store) Document(id string) (model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.documentIndexLocked(id)
	if i < 0 {
		return model.Document{}, false
	}
	return s.documents[i].Clone(), true
}

// AddDocument stores a new document. A folderId that names no existing folder
// is dropped and the document is created unfiled.
func (s *Store) AddDocument(in model.NewDocument) model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	content := in.Content.Clone()
	if content.Kind == "" {
		content.Kind = model.ContentText
	}
	d := model.Document{
		ID:        s.newIDLocked("doc"),
		Name:      in.Name,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.FolderID != nil && s.folderIndexLocked(*in.FolderID) >= 0 {
		id := *in.FolderID
		d.FolderID = &id
	}
	s.documents = append(s.documents, d)
	s.persistLocked(CollectionDocuments)

	s.log.Debug("document added", zap.String("id", d.ID), zap.String("kind", string(d.Content.Kind)), zap.Int("size", d.Content.Size()))
	return d.Clone()
}

// UpdateDocument merges p and refreshes updatedAt. updatedAt never moves
// backwards, even if the clock does; createdAt is never touched.
func (s *Store) UpdateDocument(id string, p model.DocumentPatch) (model.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.documentIndexLocked(id)
	if i < 0 {
		return model.Document{}, false
	}
	if p.FolderID != nil && *p.FolderID != "" && s.folderIndexLocked(*p.FolderID) < 0 {
		p.FolderID = nil
	}

	d := &s.documents[i]
	d.Apply(p)
	d.UpdatedAt = laterOf(s.clock.Now(), d.UpdatedAt)
	s.persistLocked(CollectionDocuments)
	return d.Clone(), true
}

// DeleteDocument removes the document and scrubs its id from every task.
func (s *Store) DeleteDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.documentIndexLocked(id)
	if i < 0 {
		return false
	}
	s.documents = slices.Delete(s.documents, i, i+1)

	touched := 0
	for j := range s.tasks {
		if s.tasks[j].RemoveDocument(id) {
			touched++
		}
	}
	s.persistLocked(CollectionDocuments, CollectionTasks)

	s.log.Debug("document deleted", zap.String("id", id), zap.Int("tasks_updated", touched))
	return true
}

func laterOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
