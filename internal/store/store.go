package store

import (
	"context"

	"github.com/cramdeck/cramdeck/pkg/types"
)

// Store persists and queries course content records. The RAG core treats it
// as an external collaborator: it only ever reads record text by identifier.
type Store interface {
	// PutRecord stores doc, assigning an ID and creation time when unset.
	PutRecord(ctx context.Context, doc *types.Document) error

	// GetRecord fetches a record of a specific kind.
	GetRecord(ctx context.Context, kind types.RecordKind, id string) (*types.Document, error)

	// GetAny fetches a record by ID regardless of kind.
	GetAny(ctx context.Context, id string) (*types.Document, error)

	// ListRecords returns records matching the filter, newest first.
	ListRecords(ctx context.Context, filter Filter) ([]*types.Document, error)

	// DeleteRecord removes a record; userID must match the record's owner.
	DeleteRecord(ctx context.Context, id, userID string) error

	// AssembleContent concatenates the bodies of the given records in the
	// order the IDs were supplied. Missing records are skipped.
	AssembleContent(ctx context.Context, ids []string) (string, error)

	Close() error
}

// Filter narrows a ListRecords call. Zero values match everything.
type Filter struct {
	Kinds      []types.RecordKind
	CourseID   string
	UserID     string
	ExcludeIDs []string
}
