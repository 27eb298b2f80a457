package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// NewCollectionFromEnv selects a backend from the environment:
//
//	STORE_BACKEND=memory    in-process, lost on restart (default)
//	STORE_BACKEND=file      JSON file under STORE_DIR (default ./data)
//	STORE_BACKEND=postgres  table mcp_<name>, DSN from DATABASE_URL
//	STORE_BACKEND=redis     hash mcp:<name>, URL from REDIS_URL
func NewCollectionFromEnv(name string) (Collection, error) {
	backend := os.Getenv("STORE_BACKEND")
	switch backend {
	case "", "memory":
		return NewMemoryCollection(), nil

	case "file":
		dir := os.Getenv("STORE_DIR")
		if dir == "" {
			dir = "data"
		}
		return NewFileCollection(filepath.Join(dir, name+".json"))

	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return nil, fmt.Errorf("store: STORE_BACKEND=postgres requires DATABASE_URL")
		}
		return NewPostgresCollection(dsn, name)

	case "redis":
		url := os.Getenv("REDIS_URL")
		if url == "" {
			return nil, fmt.Errorf("store: STORE_BACKEND=redis requires REDIS_URL")
		}
		return NewRedisCollection(url, name)

	default:
		return nil, fmt.Errorf("store: unknown backend %q", backend)
	}
}
