package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeReplacesAndInserts(t *testing.T) {
	t.Parallel()

	existing := Dataset{{Year: 2020, Count: 100}, {Year: 2021, Count: 150}}
	updates := []YearCount{{Year: 2021, Count: 200}, {Year: 2022, Count: 50}}

	got := Merge(existing, updates)

	require.Equal(t, Dataset{
		{Year: 2020, Count: 100},
		{Year: 2021, Count: 200},
		{Year: 2022, Count: 50},
	}, got)
}

func TestMergeLeavesOtherRowsUntouched(t *testing.T) {
	t.Parallel()

	existing := Dataset{
		{Year: 2005, Count: 7},
		{Year: 2010, Count: 1234},
		{Year: 2015, Count: 9000},
	}
	got := Merge(existing, []YearCount{{Year: 2010, Count: 1300}})

	require.Len(t, got, 3)
	assert.Equal(t, YearCount{Year: 2005, Count: 7}, got[0])
	assert.Equal(t, YearCount{Year: 2010, Count: 1300}, got[1])
	assert.Equal(t, YearCount{Year: 2015, Count: 9000}, got[2])
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	existing := Dataset{{Year: 2019, Count: 11}}
	updates := []YearCount{{Year: 2019, Count: 12}, {Year: 2020, Count: 13}}

	first := Merge(existing, updates)
	second := Merge(first, updates)

	assert.Equal(t, first, second)
}

func TestMergeSortsUnsortedInput(t *testing.T) {
	t.Parallel()

	got := Merge(nil, []YearCount{
		{Year: 2022, Count: 3},
		{Year: 2005, Count: 1},
		{Year: 2013, Count: 2},
	})

	assert.Equal(t, []int{2005, 2013, 2022}, got.Years())
}

func TestMergeEmptyUpdatesKeepsDataset(t *testing.T) {
	t.Parallel()

	existing := Dataset{{Year: 2020, Count: 100}}
	assert.Equal(t, existing, Merge(existing, nil))
}

func TestLookup(t *testing.T) {
	t.Parallel()

	d := Dataset{{Year: 2020, Count: 100}}

	count, ok := d.Lookup(2020)
	require.True(t, ok)
	assert.Equal(t, 100, count)

	_, ok = d.Lookup(1999)
	assert.False(t, ok)
}
