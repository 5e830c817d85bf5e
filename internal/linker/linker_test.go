package linker

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopLogger struct{}

func (noopLogger) Infof(format string, args ...any)             {}
func (noopLogger) Warnf(format string, args ...any)             {}
func (noopLogger) Errorf(err error, format string, args ...any) {}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "P1"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "P2"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "P1", "front.jpg"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "P1", "side.PNG"), []byte("img"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "P1", "notes.txt"), []byte("skip"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "stray.jpg"), []byte("skip"), 0o644))

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	result, err := Collect(root, now, noopLogger{})
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, "P1", rec.ProductID)
		assert.Equal(t, now, rec.IngestTS)
	}

	require.Len(t, result.PerProduct["P1"], 2)
	assert.Equal(t, filepath.Join(root, "P1", "front.jpg"), result.PerProduct["P1"][0].LocalPath)

	// Товар без изображений не попадает в результат вовсе.
	assert.NotContains(t, result.PerProduct, "P2")
}

func TestCollectMissingRoot(t *testing.T) {
	result, err := Collect(filepath.Join(t.TempDir(), "nope"), time.Now(), noopLogger{})
	require.NoError(t, err)
	assert.Empty(t, result.Records)
	assert.Empty(t, result.PerProduct)
}
