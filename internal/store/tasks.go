package store

import (
	"slices"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

// Tasks returns a copy of the task collection in insertion order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.taskIndexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

func (s *Store) AddTask(in model.NewTask) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := model.Task{
		ID:        s.newIDLocked("task"),
		Title:     in.Title,
		Completed: in.Completed,
	}
	if in.Deadline != nil {
		d := *in.Deadline
		t.Deadline = &d
	}
	s.tasks = append(s.tasks, t)
	s.persistLocked(CollectionTasks)

	s.log.Debug("task added", zap.String("id", t.ID))
	return t.Clone()
}

// UpdateTask merges p into the task. It reports false, and writes nothing,
// when id is unknown. Replacement document ids that name no document are
// dropped.
func (s *Store) UpdateTask(id string, p model.TaskPatch) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndexLocked(id)
	if i < 0 {
		return model.Task{}, false
	}
	if p.DocumentIDs != nil {
		known := make([]string, 0, len(*p.DocumentIDs))
		for _, did := range *p.DocumentIDs {
			if s.documentIndexLocked(did) >= 0 {
				known = append(known, did)
			}
		}
		p.DocumentIDs = &known
	}
	s.tasks[i].Apply(p)
	s.persistLocked(CollectionTasks)
	return s.tasks[i].Clone(), true
}

func (s *Store) DeleteTask(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndexLocked(id)
	if i < 0 {
		return false
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.persistLocked(CollectionTasks)

	s.log.Debug("task deleted", zap.String("id", id))
	return true
}

// AttachDocumentToTask links an existing document to a task. An unknown task
// is a no-op; an unknown document is rejected with ErrDocumentNotFound so no
// dangling reference can be created. Attaching twice changes nothing.
func (s *Store) AttachDocumentToTask(taskID, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndexLocked(taskID)
	if i < 0 {
		return nil
	}
	if s.documentIndexLocked(documentID) < 0 {
		return ErrDocumentNotFound
	}
	if !s.tasks[i].AddDocument(documentID) {
		return nil
	}
	s.persistLocked(CollectionTasks)
	return nil
}

func (s *Store) RemoveDocumentFromTask(taskID, documentID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.taskIndexLocked(taskID)
	if i < 0 {
		return false
	}
	if !s.tasks[i].RemoveDocument(documentID) {
		return false
	}
	s.persistLocked(CollectionTasks)
	return true
}
