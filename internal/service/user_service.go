package service

import (
	"context"
	"net/mail"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	base
}

var _ domain.UserService = (*UserService)(nil)

func NewUserService(tx domain.Transactor, logger *zerolog.Logger) *UserService {
	return &UserService{base: newBase(tx, nil, nil, logger, "user_service")}
}

// ValidateEmail accepts a bare address such as user@example.com.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return domain.Validation("Email %q is not valid", email)
	}
	return nil
}

func (s *UserService) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	if strings.TrimSpace(user.Name) == "" {
		return nil, domain.Validation("User name must not be blank")
	}
	if err := ValidateEmail(user.Email); err != nil {
		return nil, err
	}

	user.ID = 0
	err := s.write(ctx, func(store domain.Store) error {
		return store.Users().CreateUser(ctx, &user)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("user_id", user.ID).Msg("user created")
	return &user, nil
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := s.read(ctx, func(store domain.Store) error {
		var err error
		users, err = store.Users().GetAllUsers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user *models.User
	err := s.read(ctx, func(store domain.Store) error {
		var err error
		user, err = store.Users().GetUserByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser merges the patch into the stored user. Blank values leave fields unchanged.
func (s *UserService) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var updated models.User
	err := s.write(ctx, func(store domain.Store) error {
		current, err := store.Users().GetUserByID(ctx, id)
		if err != nil {
			return err
		}
		updated = models.MergeUser(*current, patch)
		if updated.Email != current.Email {
			if err := ValidateEmail(updated.Email); err != nil {
				return err
			}
		}
		return store.Users().UpdateUser(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("user_id", id).Msg("user updated")
	return &updated, nil
}

// DeleteUser removes a user who owns nothing and has no bookings, comments or requests.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	err := s.write(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, id); err != nil {
			return err
		}
		referenced, err := store.Users().IsUserReferenced(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return domain.Conflict("User %d still has items, bookings, comments or requests", id)
		}
		return store.Users().DeleteUser(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log(ctx).Info().Int64("user_id", id).Msg("user deleted")
	return nil
}
