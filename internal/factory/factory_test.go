package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filesnapshot "github.com/YisusLuligo/chat/internal/snapshot/file"
	"github.com/YisusLuligo/chat/internal/snapshot/memory"
)

func TestNewWithMemoryStorage(t *testing.T) {
	app, err := New(Config{StorageType: StorageTypeMemory})
	require.NoError(t, err)

	assert.IsType(t, &memory.Store{}, app.Store)
	assert.NotNil(t, app.Clock)
	assert.NotNil(t, app.Coordinator)
}

func TestNewDefaultsToFileStorage(t *testing.T) {
	app, err := New(Config{DataDir: t.TempDir()})
	require.NoError(t, err)

	assert.IsType(t, &filesnapshot.Store{}, app.Store)
}

func TestNewRejectsUnknownStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "cloud"})
	assert.Error(t, err)
}

func TestNewRequiresRedisConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}
