package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stromning/scholartrend/internal/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Scholar.Keyword = "OpenFOAM"
	cfg.Scholar.StartYear = 2005
	cfg.Dataset.Driver = "csv"
	cfg.Dataset.Path = filepath.Join(dir, "counts.csv")
	cfg.Upload.Provider = "none"
	cfg.Publisher.Provider = "none"
	return cfg
}

func TestNewWithCSVStore(t *testing.T) {
	t.Parallel()

	a, err := New(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Store())
	assert.NotNil(t, a.IDGen())
	assert.NotNil(t, a.Clock())
	assert.Nil(t, a.Uploader())
	assert.Nil(t, a.Publisher())
}

func TestNewWithLocalUploader(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Upload.Provider = "local"
	cfg.Upload.Local.Dir = filepath.Join(t.TempDir(), "artifacts")

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Uploader())
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Dataset.Driver = "sqlite"

	_, err := New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown dataset driver")
}

func TestNewRejectsUnknownUploadProvider(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Upload.Provider = "s3"

	_, err := New(context.Background(), cfg, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown upload provider")
}
