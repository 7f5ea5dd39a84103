package database

import (
	"context"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	id, err := s.insert(ctx, "comments", goqu.Record{
		"text":      comment.Text,
		"item_id":   comment.ItemID,
		"author_id": comment.AuthorID,
		"created":   comment.Created.UTC(),
	})
	if err != nil {
		return err
	}
	comment.ID = id
	return nil
}

// GetCommentsByItems returns comments for all given items, newest first.
func (s *Store) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.CommentDetails, error) {
	comments := []*models.CommentDetails{}
	if len(itemIDs) == 0 {
		return comments, nil
	}
	ds := s.dialect.From(goqu.T("comments").As("c")).Prepared(true).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("c.author_id")))).
		Select(
			goqu.I("c.id").As("id"),
			goqu.I("c.text").As("text"),
			goqu.I("c.item_id").As("item_id"),
			goqu.I("c.author_id").As("author_id"),
			goqu.I("c.created").As("created"),
			goqu.I("u.name").As("author_name"),
		).
		Where(goqu.I("c.item_id").In(itemIDs)).
		Order(goqu.I("c.created").Desc(), goqu.I("c.id").Desc())
	if err := s.selectAll(ctx, &comments, ds); err != nil {
		return nil, err
	}
	return comments, nil
}
