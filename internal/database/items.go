package database

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

func (s *Store) itemsQuery() *goqu.SelectDataset {
	return s.dialect.From(goqu.T("items").As("i")).Prepared(true).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("i.owner_id")))).
		Select(
			goqu.I("i.id").As("id"),
			goqu.I("i.name").As("name"),
			goqu.I("i.description").As("description"),
			goqu.I("i.available").As("available"),
			goqu.I("i.owner_id").As("owner_id"),
			goqu.I("i.request_id").As("request_id"),
			goqu.I("u.name").As("owner_name"),
		)
}

func itemRecord(item *models.Item) goqu.Record {
	rec := goqu.Record{
		"name":        item.Name,
		"description": item.Description,
		"available":   item.Available,
		"owner_id":    item.OwnerID,
		"request_id":  nil,
	}
	if item.RequestID.Valid {
		rec["request_id"] = item.RequestID.Int64
	}
	return rec
}

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := s.insert(ctx, "items", itemRecord(item))
	if err != nil {
		return err
	}
	item.ID = id
	return nil
}

func (s *Store) GetItemByID(ctx context.Context, id int64) (*models.ItemDetails, error) {
	var item models.ItemDetails
	if err := s.get(ctx, &item, s.itemsQuery().Where(goqu.I("i.id").Eq(id))); err != nil {
		return nil, notFoundOr(err, "Item with id %d not found", id)
	}
	return &item, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	ds := s.dialect.Update("items").Prepared(true).
		Set(itemRecord(item)).
		Where(goqu.C("id").Eq(item.ID))
	result, err := s.exec(ctx, ds)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("Item with id %d not found", item.ID)
	}
	return nil
}

func (s *Store) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error) {
	items := []*models.ItemDetails{}
	ds := s.itemsQuery().
		Where(goqu.I("i.owner_id").Eq(ownerID)).
		Order(goqu.I("i.id").Asc())
	if err := s.selectAll(ctx, &items, ds); err != nil {
		return nil, err
	}
	return items, nil
}

// SearchItems matches text case-insensitively against name or description.
// Availability is not filtered here.
func (s *Store) SearchItems(ctx context.Context, text string) ([]*models.ItemDetails, error) {
	items := []*models.ItemDetails{}
	if strings.TrimSpace(text) == "" {
		return items, nil
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	ds := s.itemsQuery().
		Where(goqu.Or(
			containsLower(goqu.I("i.name"), pattern),
			containsLower(goqu.I("i.description"), pattern),
		)).
		Order(goqu.I("i.id").Asc())
	if err := s.selectAll(ctx, &items, ds); err != nil {
		return nil, err
	}
	return items, nil
}

// likeEscaper экранирует спецсимволы LIKE, чтобы текст искался буквально.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func containsLower(col exp.IdentifierExpression, pattern string) exp.LiteralExpression {
	return goqu.L(`LOWER(?) LIKE ? ESCAPE '\'`, col, pattern)
}

func (s *Store) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.ItemDetails, error) {
	items := []*models.ItemDetails{}
	if len(requestIDs) == 0 {
		return items, nil
	}
	ds := s.itemsQuery().
		Where(goqu.I("i.request_id").In(requestIDs)).
		Order(goqu.I("i.id").Asc())
	if err := s.selectAll(ctx, &items, ds); err != nil {
		return nil, err
	}
	return items, nil
}
