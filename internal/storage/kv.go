// Package storage provides the durable key-value backends the store mirrors
// its collections into. Each collection is written as one value under one key.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyKey       = errors.New("storage key is required")
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// KV is a flat durable key-value store.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Options struct {
	Backend     string
	DataDir     string
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
}

// Open builds the backend named by opts.Backend. An empty name means file.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendFile:
		return NewFileKV(opts.DataDir)
	case BackendSQLite:
		return NewSQLiteKV(ctx, opts.SQLitePath)
	case BackendRedis:
		return NewRedisKV(ctx, opts.RedisAddr, opts.RedisPrefix)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}
