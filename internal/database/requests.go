package database

import (
	"context"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (s *Store) requestsQuery() *goqu.SelectDataset {
	return s.dialect.From("requests").Prepared(true).
		Select("id", "description", "requestor_id", "created")
}

func (s *Store) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	id, err := s.insert(ctx, "requests", goqu.Record{
		"description":  request.Description,
		"requestor_id": request.RequestorID,
		"created":      request.Created.UTC(),
	})
	if err != nil {
		return err
	}
	request.ID = id
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	if err := s.get(ctx, &request, s.requestsQuery().Where(goqu.C("id").Eq(id))); err != nil {
		return nil, notFoundOr(err, "Request with id %d not found", id)
	}
	return &request, nil
}

func (s *Store) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	ds := s.requestsQuery().
		Where(goqu.C("requestor_id").Eq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc())
	if err := s.selectAll(ctx, &requests, ds); err != nil {
		return nil, err
	}
	return requests, nil
}

// GetRequestsExcept pages through requests made by everyone except requestorID, newest first.
func (s *Store) GetRequestsExcept(ctx context.Context, requestorID int64, offset, limit int) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	ds := s.requestsQuery().
		Where(goqu.C("requestor_id").Neq(requestorID)).
		Order(goqu.C("created").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		Offset(uint(offset))
	if err := s.selectAll(ctx, &requests, ds); err != nil {
		return nil, err
	}
	return requests, nil
}
