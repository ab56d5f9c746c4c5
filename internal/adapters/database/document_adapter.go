package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

var documentColumns = []interface{}{
	"id", "raw_text", "tags", "mime_type", "file_size", "created_at",
}

// DocumentAdapter implements document persistence in Postgres.
type DocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDocumentAdapter creates a new document adapter.
func NewDocumentAdapter(client *postgres.Client) repositories.DocumentRepository {
	return &DocumentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a document record.
func (a *DocumentAdapter) Create(ctx context.Context, doc *entities.Document) error {
	record := goqu.Record{
		"id":         doc.ID,
		"raw_text":   doc.RawText,
		"tags":       pq.Array(doc.Tags),
		"mime_type":  sql.NullString{String: doc.MimeType, Valid: doc.MimeType != ""},
		"file_size":  doc.FileSize,
		"created_at": doc.CreatedAt,
	}

	query, args, err := a.db.Insert("documents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build document insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create document", err)
	}

	return nil
}

// GetByID retrieves a document by ID.
func (a *DocumentAdapter) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query, args, err := a.db.Select(documentColumns...).
		From("documents").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build document query", err)
	}

	doc, err := scanDocument(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("document not found: " + id)
		}
		return nil, apperrors.NewInternalError("failed to get document", err)
	}
	return doc, nil
}

// List pages through documents, newest first.
func (a *DocumentAdapter) List(ctx context.Context, limit, offset int) ([]*entities.Document, error) {
	query, args, err := a.db.Select(documentColumns...).
		From("documents").
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build document list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list documents", err)
	}
	defer rows.Close()

	var docs []*entities.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan document", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*entities.Document, error) {
	doc := &entities.Document{}
	var mimeType sql.NullString

	err := row.Scan(
		&doc.ID,
		&doc.RawText,
		pq.Array(&doc.Tags),
		&mimeType,
		&doc.FileSize,
		&doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.MimeType = mimeType.String
	return doc, nil
}
