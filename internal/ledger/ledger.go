// Package ledger persists the write-once slot assignments made for each
// reporting scope. A value written for a (scope, record) pair is never
// overwritten; callers add new keys and re-persist the whole map.
package ledger

import "context"

// Store reads and writes the slot-assignment map for a scope key.
//
// Get must tolerate a missing scope (empty map, nil error) and a malformed
// stored value (also treated as empty): reconciliation degrades to fresh
// computation rather than failing the report.
type Store interface {
	Get(ctx context.Context, scopeKey string) (map[string]int, error)
	Put(ctx context.Context, scopeKey string, assignments map[string]int) error
}
