package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	UpsertDocument(ctx context.Context, in Document) (Document, error)
	GetDocument(ctx context.Context, id string) (Document, error)
	GetDocumentByPath(ctx context.Context, path string) (Document, error)
	DeleteDocument(ctx context.Context, id string) error
	ListDocuments(ctx context.Context, filter DocumentListFilter) ([]Document, error)

	CreateCompletion(ctx context.Context, in Completion) error
	GetCompletion(ctx context.Context, id string) (Completion, error)
	DeleteCompletion(ctx context.Context, id string) error
	ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error)
}
