package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVStoreLoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewCSVStore(filepath.Join(t.TempDir(), "counts.csv"))
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVStoreRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.csv")
	store, err := NewCSVStore(path)
	require.NoError(t, err)

	want := Dataset{{Year: 2005, Count: 7}, {Year: 2021, Count: 2100}}
	require.NoError(t, store.Save(context.Background(), want))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "year,count\n2005,7\n2021,2100\n", string(raw))
}

func TestCSVStoreSaveSortsRows(t *testing.T) {
	t.Parallel()

	store, err := NewCSVStore(filepath.Join(t.TempDir(), "counts.csv"))
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), Dataset{
		{Year: 2022, Count: 50},
		{Year: 2020, Count: 100},
	}))

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2022}, got.Years())
}

func TestCSVStoreLoadWithoutHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.csv")
	require.NoError(t, os.WriteFile(path, []byte("2010,42\n2011,43\n"), 0o600))

	store, err := NewCSVStore(path)
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Dataset{{Year: 2010, Count: 42}, {Year: 2011, Count: 43}}, got)
}

func TestCSVStoreLoadRejectsMalformedContent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{name: "non-numeric year", content: "year,count\ntwentytwenty,5\n"},
		{name: "non-numeric count", content: "year,count\n2020,many\n"},
		{name: "negative count", content: "year,count\n2020,-3\n"},
		{name: "wrong column count", content: "year,count\n2020,5,extra\n"},
		{name: "duplicate year", content: "year,count\n2020,1\n2020,2\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "counts.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))

			store, err := NewCSVStore(path)
			require.NoError(t, err)

			_, err = store.Load(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestCSVStoreSaveOverwritesPreviousFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "counts.csv")
	store, err := NewCSVStore(path)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, Dataset{{Year: 2019, Count: 9}}))
	require.NoError(t, store.Save(ctx, Dataset{{Year: 2020, Count: 10}}))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Dataset{{Year: 2020, Count: 10}}, got)
}

func TestNewCSVStoreRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := NewCSVStore("  ")
	assert.Error(t, err)
}
