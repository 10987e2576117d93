// Package emailindex maps a keyed hash of a lowercased email to the ledger
// id of its credential. The ledger stays the source of truth: an entry is a
// hint that the caller verifies by decrypting the record it points to.
package emailindex

import "context"

type Repository interface {
	// Lookup returns the credential id stored for key, or a not-found error.
	Lookup(ctx context.Context, key string) (uint64, error)
	// Remember stores or replaces the credential id for key.
	Remember(ctx context.Context, key string, credentialID uint64) error
	// Forget removes key. Removing an absent key is not an error.
	Forget(ctx context.Context, key string) error
}
