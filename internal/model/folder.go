package model

// Folder is a flat label for documents. Folders do not nest.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NewFolder struct {
	Name string `json:"name"`
}

type FolderPatch struct {
	Name *string `json:"name,omitempty"`
}

func (f *Folder) Apply(p FolderPatch) {
	if p.Name != nil {
		f.Name = *p.Name
	}
}
