package model

import (
	"context"
	"time"
)

// RecordStore is a key-value store with per-entry expiry shared by all
// participants.
type RecordStore interface {
	// Get returns the stored value; found is false on a miss or expiry.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl. A zero ttl keeps the entry forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CompareAndSet stores next only if the current value equals expected.
	// A nil expected requires the key to be absent. It reports whether the
	// write happened.
	CompareAndSet(ctx context.Context, key string, expected, next []byte, ttl time.Duration) (bool, error)
}

// MetadataUploader pins label metadata to a content-addressed store.
type MetadataUploader interface {
	// UploadJSON pins {name, description} and returns its content identifier.
	UploadJSON(ctx context.Context, name, description string) (string, error)
}

// Minter mints a label token on chain. Submission and confirmation are
// separate so the transaction hash can be recorded before waiting.
type Minter interface {
	// SubmitMint sends mint_item(recipient, uri) and returns the transaction
	// hash without waiting for it to be included.
	SubmitMint(ctx context.Context, recipient, uri string) (string, error)

	// WaitForTransaction blocks until txHash is accepted or ctx is done. A
	// transaction that executed and reverted yields an error with a
	// Reverted() bool method reporting true.
	WaitForTransaction(ctx context.Context, txHash string) error

	// ExplorerURL returns the block explorer prefix for transaction hashes.
	ExplorerURL(ctx context.Context) (string, error)
}
