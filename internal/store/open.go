package store

import (
	"fmt"
	"strings"

	"github.com/stellarlinkco/prompt-suite/internal/config"
)

// Open constructs the store selected by the configuration's storage section.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: missing config")
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if storageType == "" {
		storageType = "file"
	}

	switch storageType {
	case "file", "json", "yaml":
		return OpenFile(cfg.Storage.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("store: unknown storage type %q", cfg.Storage.Type)
	}
}
