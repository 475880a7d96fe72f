// Package serverapp assembles the storage backend, the store and the HTTP API
// into one handler.
package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/laitheanh1062006/simple-schedule-organizer/internal/api"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/config"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/httpmw"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/storage"
	"github.com/laitheanh1062006/simple-schedule-organizer/internal/store"
)

const readyTimeout = 2 * time.Second

type Options struct {
	Config *config.Config
	Logger *zap.Logger
	// KV overrides the backend named in Config.Storage. The caller keeps
	// ownership of it.
	KV storage.KV
}

type App struct {
	Handler http.Handler
	Store   *store.Store

	kv     storage.KV
	ownsKV bool
}

// StorageOptions maps the storage section of cfg onto backend options.
func StorageOptions(cfg *config.Config) storage.Options {
	return storage.Options{
		Backend:     cfg.Storage.Backend,
		DataDir:     cfg.Storage.DataDir,
		SQLitePath:  cfg.Storage.SQLitePath,
		RedisAddr:   cfg.Storage.RedisAddr,
		RedisPrefix: cfg.Storage.RedisPrefix,
	}
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	cfg := opts.Config

	kv, ownsKV := opts.KV, false
	if kv == nil {
		var err error
		kv, err = storage.Open(ctx, StorageOptions(cfg))
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
		}
		ownsKV = true
	}

	st := store.New(ctx, kv,
		store.WithLogger(opts.Logger.Named("store")),
		store.WithKeyPrefix(cfg.Storage.KeyPrefix),
		store.WithWriteTimeout(cfg.Storage.WriteTimeout),
	)

	mux := http.NewServeMux()
	api.NewHandler(st, api.Options{
		Logger:         opts.Logger.Named("api"),
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}).Register(mux)

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if _, _, err := kv.Get(ctx, store.Key(st.KeyPrefix(), store.CollectionTasks)); err != nil {
			opts.Logger.Warn("readiness probe failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	// Picks up collections written behind the server's back, e.g. by
	// `todesk-ops restore`.
	mux.HandleFunc("/api/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		st.Reload(r.Context())
		opts.Logger.Info("store reloaded")
		writeJSON(w, http.StatusOK, map[string]any{
			"tasks":     len(st.Tasks()),
			"documents": len(st.Documents()),
			"folders":   len(st.Folders()),
		})
	})

	opts.Logger.Info("storage ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("key_prefix", st.KeyPrefix()))

	return &App{
		Handler: httpmw.Chain(
			mux,
			httpmw.WithRequestID,
			httpmw.WithAccessLog(opts.Logger.Named("http")),
			httpmw.WithRecover(opts.Logger),
		),
		Store:  st,
		kv:     kv,
		ownsKV: ownsKV,
	}, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// Close releases the storage backend when App opened it.
func (a *App) Close() error {
	if !a.ownsKV {
		return nil
	}
	return a.kv.Close()
}
