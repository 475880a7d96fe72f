// Package ops backs up and restores the persisted collections as a tar.gz
// snapshot, independent of which storage backend holds them.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
)

const entrySuffix = ".json"

var ErrEmptySnapshot = errors.New("snapshot holds no collections")

// Summary counts what a backup or restore carried.
type Summary struct {
	Tasks     int
	Documents int
	Folders   int
}

func (s *Summary) add(c store.Collection, n int) {
	switch c {
	case store.CollectionTasks:
		s.Tasks += n
	case store.CollectionDocuments:
		s.Documents += n
	case store.CollectionFolders:
		s.Folders += n
	}
}

// Backup writes every collection found under prefix in kv to archivePath.
// Collections that were never written are left out.
func Backup(ctx context.Context, kv storage.KV, prefix, archivePath string) (Summary, error) {
	var sum Summary
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return sum, fmt.Errorf("archivePath is required")
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return sum, err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	now := time.Now()
	for _, c := range store.Collections {
		b, ok, err := kv.Get(ctx, store.Key(prefix, c))
		if err != nil {
			return sum, fmt.Errorf("read %s: %w", c, err)
		}
		if !ok {
			continue
		}
		n, err := countEntries(c, b)
		if err != nil {
			return sum, fmt.Errorf("%s: %w", c, err)
		}

		hdr := &tar.Header{
			Name:     string(c) + entrySuffix,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(b)),
			ModTime:  now,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return sum, err
		}
		if _, err := tw.Write(b); err != nil {
			return sum, err
		}
		sum.add(c, n)
	}

	if err := tw.Close(); err != nil {
		return sum, err
	}
	if err := gz.Close(); err != nil {
		return sum, err
	}
	return sum, f.Close()
}

// Restore reads archivePath and writes each collection it holds into kv under
// prefix. Every entry is validated before anything is written, so a bad
// archive leaves kv untouched.
func Restore(ctx context.Context, archivePath string, kv storage.KV, prefix string) (Summary, error) {
	var sum Summary
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	if archivePath == "" || archivePath == "." {
		return sum, fmt.Errorf("archivePath is required")
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return sum, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return sum, err
	}
	defer gz.Close()

	blobs := map[store.Collection][]byte{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return sum, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, err := sanitizeEntryName(hdr.Name)
		if err != nil {
			return sum, err
		}
		c, ok := collectionFor(name)
		if !ok {
			continue
		}
		b, err := io.ReadAll(tr)
		if err != nil {
			return sum, err
		}
		n, err := countEntries(c, b)
		if err != nil {
			return sum, fmt.Errorf("%s: %w", name, err)
		}
		blobs[c] = b
		sum.add(c, n)
	}
	if len(blobs) == 0 {
		return sum, ErrEmptySnapshot
	}

	for _, c := range store.Collections {
		b, ok := blobs[c]
		if !ok {
			continue
		}
		if err := kv.Set(ctx, store.Key(prefix, c), b); err != nil {
			return sum, fmt.Errorf("write %s: %w", c, err)
		}
	}
	return sum, nil
}

func countEntries(c store.Collection, b []byte) (int, error) {
	switch c {
	case store.CollectionTasks:
		items, _, err := store.DecodeTasks(b)
		return len(items), err
	case store.CollectionDocuments:
		items, _, err := store.DecodeDocuments(b)
		return len(items), err
	case store.CollectionFolders:
		items, _, err := store.DecodeFolders(b)
		return len(items), err
	}
	return 0, fmt.Errorf("unknown collection %q", c)
}

func collectionFor(name string) (store.Collection, bool) {
	base, ok := strings.CutSuffix(name, entrySuffix)
	if !ok {
		return "", false
	}
	for _, c := range store.Collections {
		if string(c) == base {
			return c, true
		}
	}
	return "", false
}

func sanitizeEntryName(name string) (string, error) {
	name = path.Clean(strings.TrimSpace(filepath.ToSlash(name)))
	if name == "." || name == "" {
		return "", fmt.Errorf("invalid archive entry path")
	}
	if path.IsAbs(name) {
		return "", fmt.Errorf("invalid absolute archive entry path: %s", name)
	}
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", fmt.Errorf("invalid archive entry path traversal: %s", name)
	}
	return name, nil
}
