package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnv overrides file settings from TODESK_* environment variables.
// Unset or unparsable variables leave the current value alone.
func (c *Config) ApplyEnv() {
	if v := getEnv("TODESK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := getEnvDuration("TODESK_SHUTDOWN_TIMEOUT"); v > 0 {
		c.Server.ShutdownTimeout = v
	}
	if v := getEnvInt("TODESK_MAX_UPLOAD_BYTES"); v > 0 {
		c.Server.MaxUploadBytes = int64(v)
	}
	if v := getEnv("TODESK_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := getEnv("TODESK_DATA_DIR"); v != "" {
		c.Storage.DataDir = v
	}
	if v := getEnv("TODESK_SQLITE_PATH"); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := getEnv("TODESK_REDIS_ADDR"); v != "" {
		c.Storage.RedisAddr = v
	}
	if v := getEnvDuration("TODESK_WRITE_TIMEOUT"); v > 0 {
		c.Storage.WriteTimeout = v
	}
	if v := getEnv("TODESK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvInt(key string) int {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

func getEnvDuration(key string) time.Duration {
	val := getEnv(key)
	if val == "" {
		return 0
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0
	}
	return d
}
