package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/model"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/view"
)

// documentSummary is a document without its payload, for list views.
type documentSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Kind      model.ContentKind `json:"kind"`
	MIMEType  string            `json:"mimeType,omitempty"`
	Size      int               `json:"size"`
	FolderID  *string           `json:"folderId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func summarize(docs []model.Document) []documentSummary {
	out := make([]documentSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, documentSummary{
			ID:        d.ID,
			Name:      d.Name,
			Kind:      d.Content.Kind,
			MIMEType:  d.Content.MIMEType,
			Size:      d.Content.Size(),
			FolderID:  d.FolderID,
			CreatedAt: d.CreatedAt,
			UpdatedAt: d.UpdatedAt,
		})
	}
	return out
}

// /api/documents  (collection)
//
// GET accepts ?folder=<id> or ?folder=unfiled.
func (h *Handler) DocumentsRoot(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		docs := h.store.Documents()
		switch folder := strings.TrimSpace(r.URL.Query().Get("folder")); folder {
		case "":
		case "unfiled":
			docs = view.Unfiled(docs)
		default:
			docs = view.InFolder(docs, folder)
		}
		writeJSON(w, http.StatusOK, summarize(docs))

	case http.MethodPost:
		var in model.NewDocument
		if err := decodeJSON(r, &in); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if strings.TrimSpace(in.Name) == "" {
			writeErr(w, http.StatusBadRequest, "name is required")
			return
		}
		if in.FolderID != nil && *in.FolderID != "" {
			if _, ok := h.store.Folder(*in.FolderID); !ok {
				writeErr(w, http.StatusBadRequest, "unknown folder")
				return
			}
		}
		writeJSON(w, http.StatusCreated, h.store.AddDocument(in))

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// /api/documents/upload  (multipart: file, optional name and folderId)
func (h *Handler) DocumentsUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeErr(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeErr(w, http.StatusBadRequest, "bad multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = filepath.Base(header.Filename)
	}

	in := model.NewDocument{
		Name:    name,
		Content: model.BinaryContent(data, uploadMIMEType(header.Header.Get("Content-Type"), header.Filename, data)),
	}
	if folderID := strings.TrimSpace(r.FormValue("folderId")); folderID != "" {
		if _, ok := h.store.Folder(folderID); !ok {
			writeErr(w, http.StatusBadRequest, "unknown folder")
			return
		}
		in.FolderID = &folderID
	}

	d := h.store.AddDocument(in)
	h.log.Info("document uploaded", zap.String("id", d.ID), zap.String("mime", d.Content.MIMEType), zap.Int("size", len(data)))
	writeJSON(w, http.StatusCreated, summarize([]model.Document{d})[0])
}

// uploadMIMEType prefers the part header, then the file extension, then
// content sniffing.
func uploadMIMEType(header, filename string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" {
		return mt
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(data)
}

// /api/documents/{id}[/content]
func (h *Handler) DocumentsSub(w http.ResponseWriter, r *http.Request) {
	parts := splitTail(r.URL.Path, "/api/documents/")
	if len(parts) == 0 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	if len(parts) == 2 && parts[1] == "content" {
		h.documentContent(w, r, id)
		return
	}
	if len(parts) != 1 {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		d, ok := h.store.Document(id)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, d)

	case http.MethodPatch:
		var p model.DocumentPatch
		if err := decodeJSON(r, &p); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if p.Empty() {
			writeErr(w, http.StatusBadRequest, "nothing to update")
			return
		}
		if p.FolderID != nil && *p.FolderID != "" {
			if _, ok := h.store.Folder(*p.FolderID); !ok {
				writeErr(w, http.StatusBadRequest, "unknown folder")
				return
			}
		}
		d, ok := h.store.UpdateDocument(id, p)
		if !ok {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, d)

	case http.MethodDelete:
		if !h.store.DeleteDocument(id) {
			writeErr(w, http.StatusNotFound, "not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// documentContent streams the raw payload as a download.
func (h *Handler) documentContent(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	d, ok := h.store.Document(id)
	if !ok {
		writeErr(w, http.StatusNotFound, "not found")
		return
	}

	body := []byte(d.Content.Text)
	contentType := "text/plain; charset=utf-8"
	filename := d.Name
	if d.Content.IsBinary() {
		body = d.Content.Data
		contentType = d.Content.MIMEType
	} else if filepath.Ext(filename) == "" {
		filename += ".txt"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
