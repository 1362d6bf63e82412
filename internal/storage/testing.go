package storage

import "context"

// OpenMemory opens a migrated in-memory database. Data lives until Close.
func OpenMemory(ctx context.Context) (*DB, error) {
	return Open(ctx, DefaultConfig(MemoryPath))
}
