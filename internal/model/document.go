package model

import "time"

type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   Content   `json:"content"`
	FolderID  *string   `json:"folderId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type NewDocument struct {
	Name     string  `json:"name"`
	Content  Content `json:"content"`
	FolderID *string `json:"folderId,omitempty"`
}

// DocumentPatch never touches id or createdAt.
// An empty FolderID string unfiles the document.
type DocumentPatch struct {
	Name     *string  `json:"name,omitempty"`
	Content  *Content `json:"content,omitempty"`
	FolderID *string  `json:"folderId,omitempty"`
}

func (p DocumentPatch) Empty() bool {
	return p.Name == nil && p.Content == nil && p.FolderID == nil
}

func (d Document) InFolder(folderID string) bool {
	return d.FolderID != nil && *d.FolderID == folderID
}

func (d Document) Unfiled() bool {
	return d.FolderID == nil
}

func (d *Document) Apply(p DocumentPatch) {
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Content != nil {
		d.Content = p.Content.Clone()
	}
	if p.FolderID != nil {
		if *p.FolderID == "" {
			d.FolderID = nil
		} else {
			id := *p.FolderID
			d.FolderID = &id
		}
	}
}

func (d Document) Clone() Document {
	d.Content = d.Content.Clone()
	if d.FolderID != nil {
		id := *d.FolderID
		d.FolderID = &id
	}
	return d
}
