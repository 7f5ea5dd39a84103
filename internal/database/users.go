package database

import (
	"context"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	id, err := s.insert(ctx, "users", goqu.Record{
		"name":  user.Name,
		"email": user.Email,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("Email %s is already registered", user.Email)
		}
		return err
	}
	user.ID = id
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	ds := s.dialect.From("users").Prepared(true).
		Select("id", "name", "email").
		Where(goqu.C("id").Eq(id))
	if err := s.get(ctx, &user, ds); err != nil {
		return nil, notFoundOr(err, "User with id %d not found", id)
	}
	return &user, nil
}

func (s *Store) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	ds := s.dialect.From("users").Prepared(true).
		Select("id", "name", "email").
		Order(goqu.C("id").Asc())
	if err := s.selectAll(ctx, &users, ds); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *models.User) error {
	ds := s.dialect.Update("users").Prepared(true).
		Set(goqu.Record{"name": user.Name, "email": user.Email}).
		Where(goqu.C("id").Eq(user.ID))
	result, err := s.exec(ctx, ds)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("Email %s is already registered", user.Email)
		}
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("User with id %d not found", user.ID)
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	ds := s.dialect.Delete("users").Prepared(true).Where(goqu.C("id").Eq(id))
	result, err := s.exec(ctx, ds)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.NotFound("User with id %d not found", id)
	}
	return nil
}

// IsUserReferenced reports whether any item, booking, comment or request points at the user.
func (s *Store) IsUserReferenced(ctx context.Context, id int64) (bool, error) {
	refs := []struct{ table, column string }{
		{"items", "owner_id"},
		{"bookings", "booker_id"},
		{"comments", "author_id"},
		{"requests", "requestor_id"},
	}
	for _, ref := range refs {
		n, err := s.count(ctx, ref.table, goqu.C(ref.column).Eq(id))
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
