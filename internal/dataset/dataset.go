// Package dataset defines the yearly count records collected from the
// search provider and the operations that maintain them.
package dataset

import "sort"

// YearCount is one row of the dataset: the approximate number of
// publications mentioning the keyword in a single year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Dataset is the full collection of rows, sorted ascending by year with at
// most one row per year. Rows for years that failed to fetch are simply
// absent; they are never padded with zeroes.
type Dataset []YearCount

// Merge applies updates to existing: each update replaces the row with the
// same year or is inserted if no such row exists. All untouched rows carry
// over unchanged. The result is sorted ascending by year. Merging the same
// updates twice yields the same dataset.
func Merge(existing Dataset, updates []YearCount) Dataset {
	byYear := make(map[int]int, len(existing)+len(updates))
	merged := make(Dataset, 0, len(existing)+len(updates))
	for _, row := range existing {
		if idx, ok := byYear[row.Year]; ok {
			merged[idx] = row
			continue
		}
		byYear[row.Year] = len(merged)
		merged = append(merged, row)
	}
	for _, row := range updates {
		if idx, ok := byYear[row.Year]; ok {
			merged[idx] = row
			continue
		}
		byYear[row.Year] = len(merged)
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Year < merged[j].Year })
	return merged
}

// Lookup returns the count recorded for year, if any.
func (d Dataset) Lookup(year int) (int, bool) {
	for _, row := range d {
		if row.Year == year {
			return row.Count, true
		}
	}
	return 0, false
}

// Years returns the years present in the dataset, in order.
func (d Dataset) Years() []int {
	years := make([]int, len(d))
	for i, row := range d {
		years[i] = row.Year
	}
	return years
}
