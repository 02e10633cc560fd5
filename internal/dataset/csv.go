package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CSVStore keeps the dataset in a flat file with a `year,count` header,
// one row per year, sorted ascending. The whole file is rewritten on every
// save via a temp file and rename so a crashed run never leaves a
// half-written dataset behind.
type CSVStore struct {
	path string
}

// NewCSVStore returns a store backed by the file at path. The parent
// directory is created if it does not exist.
func NewCSVStore(path string) (*CSVStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("dataset path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dataset dir %s: %w", dir, err)
		}
	}
	return &CSVStore{path: path}, nil
}

// Load reads the dataset file. A missing file yields an empty dataset;
// anything unparseable is an error.
func (s *CSVStore) Load(ctx context.Context) (Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dataset{}, nil
		}
		return nil, fmt.Errorf("open dataset %s: %w", s.path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", s.path, err)
	}

	rows := make(Dataset, 0, len(records))
	seen := make(map[int]struct{}, len(records))
	for i, record := range records {
		if i == 0 && isHeader(record) {
			continue
		}
		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("dataset %s line %d: %w", s.path, i+1, err)
		}
		if _, dup := seen[row.Year]; dup {
			return nil, fmt.Errorf("dataset %s line %d: duplicate year %d", s.path, i+1, row.Year)
		}
		seen[row.Year] = struct{}{}
		rows = append(rows, row)
	}
	return Merge(rows, nil), nil
}

// Save writes the full dataset, replacing any previous file.
func (s *CSVStore) Save(ctx context.Context, d Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".scholartrend-*")
	if err != nil {
		return fmt.Errorf("create temp dataset: %w", err)
	}
	tmpName := tmp.Name()

	writer := csv.NewWriter(tmp)
	records := [][]string{{"year", "count"}}
	for _, row := range Merge(d, nil) {
		records = append(records, []string{strconv.Itoa(row.Year), strconv.Itoa(row.Count)})
	}
	if err := writer.WriteAll(records); err != nil {
		tmp.Close()          //nolint:errcheck // already failing
		os.Remove(tmpName)   //nolint:errcheck // best effort
		return fmt.Errorf("write dataset rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return fmt.Errorf("close temp dataset: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return fmt.Errorf("replace dataset %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op for the file-backed store.
func (s *CSVStore) Close() error { return nil }

// Path returns the location of the backing file.
func (s *CSVStore) Path() string { return s.path }

func isHeader(record []string) bool {
	return len(record) == 2 && strings.EqualFold(strings.TrimSpace(record[0]), "year")
}

func parseRow(record []string) (YearCount, error) {
	if len(record) != 2 {
		return YearCount{}, fmt.Errorf("expected 2 columns, got %d", len(record))
	}
	year, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return YearCount{}, fmt.Errorf("bad year %q", record[0])
	}
	count, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return YearCount{}, fmt.Errorf("bad count %q", record[1])
	}
	if count < 0 {
		return YearCount{}, fmt.Errorf("negative count %d for year %d", count, year)
	}
	return YearCount{Year: year, Count: count}, nil
}
