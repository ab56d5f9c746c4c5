package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/veridoc/docguard/internal/domain/entities"
	"github.com/veridoc/docguard/internal/domain/repositories"
	"github.com/veridoc/docguard/internal/infrastructure/clients/postgres"
	apperrors "github.com/veridoc/docguard/pkg/errors"
)

var entitySetColumns = []interface{}{
	"id", "document_id", "amounts", "dates", "account_numbers",
	"entity_names", "tax_ids", "overall_confidence", "supersedes_id", "created_at",
}

// EntitySetAdapter implements extracted entity set persistence in Postgres.
// Sets are append-only; the adapter deliberately has no update or delete.
type EntitySetAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewEntitySetAdapter creates a new entity set adapter.
func NewEntitySetAdapter(client *postgres.Client) repositories.EntitySetRepository {
	return &EntitySetAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new entity set row.
func (a *EntitySetAdapter) Create(ctx context.Context, set *entities.ExtractedEntitySet) error {
	record := goqu.Record{
		"id":                 set.ID,
		"document_id":        set.DocumentID,
		"overall_confidence": set.OverallConfidence,
		"supersedes_id":      sql.NullString{String: set.SupersedesID, Valid: set.SupersedesID != ""},
		"created_at":         set.CreatedAt,
	}

	categories := map[string][]entities.ExtractedEntity{
		"amounts":         set.Amounts,
		"dates":           set.Dates,
		"account_numbers": set.AccountNumbers,
		"entity_names":    set.EntityNames,
		"tax_ids":         set.TaxIDs,
	}
	for column, list := range categories {
		data, err := marshalJSONB(list)
		if err != nil {
			return apperrors.NewInternalError("failed to encode "+column, err)
		}
		record[column] = data
	}

	query, args, err := a.db.Insert("entity_sets").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build entity set insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create entity set", err)
	}
	return nil
}

// GetByID retrieves one entity set.
func (a *EntitySetAdapter) GetByID(ctx context.Context, id string) (*entities.ExtractedEntitySet, error) {
	return a.getOne(ctx, goqu.Ex{"id": id})
}

// GetLatestByDocument retrieves the most recent entity set for a document.
func (a *EntitySetAdapter) GetLatestByDocument(ctx context.Context, documentID string) (*entities.ExtractedEntitySet, error) {
	return a.getOne(ctx, goqu.Ex{"document_id": documentID})
}

func (a *EntitySetAdapter) getOne(ctx context.Context, where goqu.Ex) (*entities.ExtractedEntitySet, error) {
	query, args, err := a.db.Select(entitySetColumns...).
		From("entity_sets").
		Where(where).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build entity set query", err)
	}

	set := &entities.ExtractedEntitySet{}
	var amounts, dates, accounts, names, taxIDs []byte
	var supersedes sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&set.ID,
		&set.DocumentID,
		&amounts,
		&dates,
		&accounts,
		&names,
		&taxIDs,
		&set.OverallConfidence,
		&supersedes,
		&set.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("entity set not found")
		}
		return nil, apperrors.NewInternalError("failed to get entity set", err)
	}

	set.SupersedesID = supersedes.String
	columns := []struct {
		name   string
		data   []byte
		target *[]entities.ExtractedEntity
	}{
		{"amounts", amounts, &set.Amounts},
		{"dates", dates, &set.Dates},
		{"account_numbers", accounts, &set.AccountNumbers},
		{"entity_names", names, &set.EntityNames},
		{"tax_ids", taxIDs, &set.TaxIDs},
	}
	for _, c := range columns {
		if err := unmarshalJSONB(c.data, c.target); err != nil {
			return nil, apperrors.NewInternalError("failed to decode "+c.name, err)
		}
	}

	return set, nil
}
