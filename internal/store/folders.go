package store

import (
	"slices"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
)

func (s *Store) Folders() []model.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.folders)
}

func (s *Store) Folder(id string) (model.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.folderIndexLocked(id)
	if i < 0 {
		return model.Folder{}, false
	}
	return s.folders[i], true
}

func (s *Store) AddFolder(in model.NewFolder) model.Folder {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := model.Folder{
		ID:   s.newIDLocked("folder"),
		Name: in.Name,
	}
	s.folders = append(s.folders, f)
	s.persistLocked(CollectionFolders)
	return f
}

func (s *Store) UpdateFolder(id string, p model.FolderPatch) (model.Folder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.folderIndexLocked(id)
	if i < 0 {
		return model.Folder{}, false
	}
	s.folders[i].Apply(p)
	s.persistLocked(CollectionFolders)
	return s.folders[i], true
}

// DeleteFolder removes the folder. Documents filed under it become unfiled;
// they are not deleted and their updatedAt is left alone.
func (s *Store) DeleteFolder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.folderIndexLocked(id)
	if i < 0 {
		return false
	}
	s.folders = slices.Delete(s.folders, i, i+1)

	unfiled := 0
	for j := range s.documents {
		if s.documents[j].InFolder(id) {
			s.documents[j].FolderID = nil
			unfiled++
		}
	}
	s.persistLocked(CollectionFolders, CollectionDocuments)

	s.log.Debug("folder deleted", zap.String("id", id), zap.Int("documents_unfiled", unfiled))
	return true
}
