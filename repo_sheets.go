package auth

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Sheets is the catalogue store. Listing always goes through a SheetFilter
// so tier logic cannot be bypassed at the query level.
type Sheets interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error)
	List(ctx context.Context, filter SheetFilter) ([]*Sheet, error)
}

type sheets struct {
	repo repository.Repository[*Sheet]
	db   *bun.DB
}

var _ Sheets = (*sheets)(nil)

// NewSheetsRepository builds a Sheets store over a bun database handle.
func NewSheetsRepository(db *bun.DB) Sheets {
	repo := repository.NewRepository[*Sheet](db, repository.ModelHandlers[*Sheet]{
		NewRecord: func() *Sheet { return &Sheet{} },
		GetID: func(s *Sheet) uuid.UUID {
			if s == nil {
				return uuid.Nil
			}
			return s.ID
		},
		SetID: func(s *Sheet, id uuid.UUID) {
			if s != nil {
				s.ID = id
			}
		},
		GetIdentifier: func() string {
			return "id"
		},
	})

	return &sheets{
		repo: repo,
		db:   db,
	}
}

func (s *sheets) GetByID(ctx context.Context, id uuid.UUID) (*Sheet, error) {
	record := &Sheet{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (s *sheets) List(ctx context.Context, filter SheetFilter) ([]*Sheet, error) {
	var records []*Sheet

	q := s.db.NewSelect().
		Model(&records).
		Order("level ASC", "subject ASC", "title ASC")

	if err := filter.ApplyTo(q).Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}
