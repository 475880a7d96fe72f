package ops

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
)

type DrillResult struct {
	Archive string
	Summary Summary
	// Empty is set when the source held no collections; nothing was
	// archived and the drill trivially passes.
	Empty bool
}

// Drill backs src up into workDir, restores the archive into memory and
// checks every collection comes back byte for byte.
func Drill(ctx context.Context, src storage.KV, prefix, workDir string) (DrillResult, error) {
	var res DrillResult

	present := 0
	for _, c := range store.Collections {
		_, ok, err := src.Get(ctx, store.Key(prefix, c))
		if err != nil {
			return res, fmt.Errorf("read %s: %w", c, err)
		}
		if ok {
			present++
		}
	}
	if present == 0 {
		res.Empty = true
		return res, nil
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return res, err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	res.Archive = filepath.Join(workDir, "todesk-drill-"+ts+".tar.gz")

	sum, err := Backup(ctx, src, prefix, res.Archive)
	if err != nil {
		return res, err
	}
	res.Summary = sum

	dst := storage.NewMemoryKV()
	if _, err := Restore(ctx, res.Archive, dst, prefix); err != nil {
		return res, err
	}

	for _, c := range store.Collections {
		key := store.Key(prefix, c)
		want, _, err := src.Get(ctx, key)
		if err != nil {
			return res, err
		}
		got, _, err := dst.Get(ctx, key)
		if err != nil {
			return res, err
		}
		if !bytes.Equal(want, got) {
			return res, fmt.Errorf("mismatch after restore: %s", key)
		}
	}
	return res, nil
}
