package ports

import (
	"context"
	"errors"
)

// ErrDocumentNotFound is returned by Load for names the store does not hold.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentStore persists encoded graph documents.
type DocumentStore interface {
	// Save stores data under name, replacing any previous document.
	Save(ctx context.Context, name string, data []byte) error

	// Load retrieves the document stored under name.
	// Returns ErrDocumentNotFound if there is none.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the document. Deleting a missing name is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the stored names in ascending order.
	List(ctx context.Context) ([]string, error)
}
