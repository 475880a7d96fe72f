package view

import "github.com/laitheanh1062006/simple-schedule-organizer/internal/model"

func InFolder(docs []model.Document, folderID string) []model.Document {
	out := []model.Document{}
	for _, d := range docs {
		if d.InFolder(folderID) {
			out = append(out, d)
		}
	}
	return out
}

func Unfiled(docs []model.Document) []model.Document {
	out := []model.Document{}
	for _, d := range docs {
		if d.Unfiled() {
			out = append(out, d)
		}
	}
	return out
}

// ByFolder buckets documents by folder id. The "" bucket holds unfiled ones.
func ByFolder(docs []model.Document) map[string][]model.Document {
	out := map[string][]model.Document{}
	for _, d := range docs {
		key := ""
		if d.FolderID != nil {
			key = *d.FolderID
		}
		out[key] = append(out[key], d)
	}
	return out
}

// AttachedDocuments returns the documents linked to t, in document order.
func AttachedDocuments(t model.Task, docs []model.Document) []model.Document {
	out := []model.Document{}
	for _, d := range docs {
		if t.HasDocument(d.ID) {
			out = append(out, d)
		}
	}
	return out
}

// AvailableDocuments returns the documents that could still be attached to t.
func AvailableDocuments(t model.Task, docs []model.Document) []model.Document {
	out := []model.Document{}
	for _, d := range docs {
		if !t.HasDocument(d.ID) {
			out = append(out, d)
		}
	}
	return out
}
