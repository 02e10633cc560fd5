package dataset

import "context"

// Store persists the dataset between runs. Load on a store that has never
// been written returns an empty dataset, not an error; a malformed backing
// file is an error so a run never overwrites data it could not read.
type Store interface {
	Load(ctx context.Context) (Dataset, error)
	Save(ctx context.Context, d Dataset) error
	Close() error
}
