package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stromning/scholartrend/internal/dataset"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func sampleData() dataset.Dataset {
	return dataset.Dataset{
		{Year: 2019, Count: 1200},
		{Year: 2020, Count: 1500},
		{Year: 2021, Count: 1800},
	}
}

func TestRenderProducesPNG(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(Config{
		Title:  "OpenFOAM mentions by year",
		Footer: "Plot provided by STROMNING",
	})

	var buf bytes.Buffer
	err := renderer.Render(sampleData(), time.Now(), &buf)
	require.NoError(t, err)
	require.Greater(t, buf.Len(), len(pngMagic))
	assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}

func TestRenderEmptyDatasetFails(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(Config{})

	var buf bytes.Buffer
	err := renderer.Render(nil, time.Now(), &buf)
	assert.Error(t, err)
}

func TestRenderFileOverwritesPriorImage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trend.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	renderer := NewRenderer(Config{Width: 400, Height: 300})
	require.NoError(t, renderer.RenderFile(sampleData(), time.Now(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), len(pngMagic))
	assert.Equal(t, pngMagic, raw[:len(pngMagic)])
}

func TestRenderSingleBar(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(Config{Width: 300, Height: 200})

	var buf bytes.Buffer
	err := renderer.Render(dataset.Dataset{{Year: 2024, Count: 42}}, time.Now(), &buf)
	require.NoError(t, err)
	require.Greater(t, buf.Len(), len(pngMagic))
	assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}

func TestRenderFlatDataset(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(Config{Width: 300, Height: 200})

	// Every bar the same height leaves no spread for the axis to infer.
	var buf bytes.Buffer
	err := renderer.Render(dataset.Dataset{
		{Year: 2020, Count: 50},
		{Year: 2021, Count: 50},
		{Year: 2022, Count: 50},
	}, time.Now(), &buf)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}

func TestRenderAllZeroCounts(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(Config{Width: 300, Height: 200})

	var buf bytes.Buffer
	err := renderer.Render(dataset.Dataset{
		{Year: 2005, Count: 0},
		{Year: 2006, Count: 0},
	}, time.Now(), &buf)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, buf.Bytes()[:len(pngMagic)])
}
