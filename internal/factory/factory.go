package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/YisusLuligo/chat/internal/coordinator"
	"github.com/YisusLuligo/chat/internal/dependencies/clock"
	"github.com/YisusLuligo/chat/internal/snapshot"
	filesnapshot "github.com/YisusLuligo/chat/internal/snapshot/file"
	"github.com/YisusLuligo/chat/internal/snapshot/memory"
	redissnapshot "github.com/YisusLuligo/chat/internal/snapshot/redis"
)

// Storage type constants
const (
	StorageTypeFile   = "file"
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Store       snapshot.Store
	Clock       clock.Clock
	Coordinator *coordinator.Coordinator
}

// Config holds configuration for the application factory
type Config struct {
	// StorageType selects the snapshot backend ("file", "memory" or "redis")
	// If empty, defaults to "file".
	StorageType string
	// DataDir is the snapshot directory for the file backend
	DataDir string
	// RedisConfig holds Redis settings (required if StorageType is "redis")
	RedisConfig *redissnapshot.Config
	// CoordinatorConfig holds coordinator settings (optional)
	CoordinatorConfig coordinator.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used.
	Logger *slog.Logger
}

// New creates the application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeFile
	}

	var store snapshot.Store
	switch storageType {
	case StorageTypeFile:
		dir := cfg.DataDir
		if dir == "" {
			dir = "data"
		}
		fileStore, err := filesnapshot.New(dir, logger)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redissnapshot.New(*cfg.RedisConfig, logger)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'file', 'memory' or 'redis'")
	}

	clk := clock.New()
	coord := coordinator.New(store, clk, cfg.CoordinatorConfig, logger)

	return &App{
		Store:       store,
		Clock:       clk,
		Coordinator: coord,
	}, nil
}
