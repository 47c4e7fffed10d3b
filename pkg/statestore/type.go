package statestore

// Bump when the persisted blob layout changes. Rows with an unknown
// version are treated as empty cache, not migrated in place.
const SchemaVersion = 1

// SqlStore adapts the package-level access functions to the
// coordinator.Store interface.
type SqlStore struct{}

func New() *SqlStore {
	return &SqlStore{}
}
