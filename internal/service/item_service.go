package service

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type ItemService struct {
	base
}

var _ domain.ItemService = (*ItemService)(nil)

func NewItemService(tx domain.Transactor, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *ItemService {
	return &ItemService{base: newBase(tx, eventBus, clock, logger, "item_service")}
}

func (s *ItemService) CreateItem(ctx context.Context, req models.NewItem, ownerID int64) (*models.ItemResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, domain.Validation("Item name must not be blank")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.Validation("Item description must not be blank")
	}
	if req.Available == nil {
		return nil, domain.Validation("Item availability is required")
	}

	var created *models.ItemDetails
	err := s.write(ctx, func(store domain.Store) error {
		owner, err := store.Users().GetUserByID(ctx, ownerID)
		if err != nil {
			return err
		}

		item := models.Item{
			Name:        req.Name,
			Description: req.Description,
			Available:   *req.Available,
			OwnerID:     owner.ID,
		}
		if req.RequestID != nil {
			request, err := store.Requests().GetRequest(ctx, *req.RequestID)
			if err != nil {
				return err
			}
			item.RequestID = sql.NullInt64{Int64: request.ID, Valid: true}
		}

		if err := store.Items().CreateItem(ctx, &item); err != nil {
			return err
		}
		created = &models.ItemDetails{Item: item, OwnerName: owner.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("item_id", created.ID).Int64("user_id", ownerID).Msg("item created")
	return models.ToItemResponse(created), nil
}

// UpdateItem applies a partial update. Only the owner may change an item.
func (s *ItemService) UpdateItem(ctx context.Context, itemID int64, patch models.ItemPatch, callerID int64) (*models.ItemResponse, error) {
	var updated *models.ItemDetails
	err := s.write(ctx, func(store domain.Store) error {
		current, err := store.Items().GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if current.OwnerID != callerID {
			return domain.Forbidden("User %d is not the owner of item %d", callerID, itemID)
		}

		merged := models.MergeItem(current.Item, patch)
		if err := store.Items().UpdateItem(ctx, &merged); err != nil {
			return err
		}
		updated = &models.ItemDetails{Item: merged, OwnerName: current.OwnerName}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("item_id", itemID).Int64("user_id", callerID).Msg("item updated")
	return models.ToItemResponse(updated), nil
}

// GetItem returns the item with its comments. The owner also sees the last and next approved bookings.
func (s *ItemService) GetItem(ctx context.Context, itemID, callerID int64) (*models.ItemResponse, error) {
	now := s.now()
	var resp *models.ItemResponse
	err := s.read(ctx, func(store domain.Store) error {
		item, err := store.Items().GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		resp = models.ToItemResponse(item)
		return enrichItems(ctx, store, []*models.ItemResponse{resp}, item.OwnerID == callerID, now)
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ItemService) GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.ItemResponse, error) {
	now := s.now()
	var result []*models.ItemResponse
	err := s.read(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, ownerID); err != nil {
			return err
		}
		items, err := store.Items().GetItemsByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		result = make([]*models.ItemResponse, 0, len(items))
		for _, item := range items {
			result = append(result, models.ToItemResponse(item))
		}
		return enrichItems(ctx, store, result, true, now)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SearchItems returns items whose name or description contains text, ignoring case.
// Blank text yields an empty list.
func (s *ItemService) SearchItems(ctx context.Context, text string) ([]*models.ItemResponse, error) {
	result := []*models.ItemResponse{}
	if strings.TrimSpace(text) == "" {
		return result, nil
	}

	err := s.read(ctx, func(store domain.Store) error {
		items, err := store.Items().SearchItems(ctx, text)
		if err != nil {
			return err
		}
		for _, item := range items {
			result = append(result, models.ToItemResponse(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddComment stores a comment from a user who has finished a booking of the item.
func (s *ItemService) AddComment(ctx context.Context, itemID int64, text string, authorID int64) (*models.CommentResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.Validation("Comment text must not be blank")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return nil, domain.Validation("Comment text must not exceed %d characters", models.MaxCommentLength)
	}

	now := s.now()
	var created *models.CommentDetails
	err := s.write(ctx, func(store domain.Store) error {
		author, err := store.Users().GetUserByID(ctx, authorID)
		if err != nil {
			return err
		}
		item, err := store.Items().GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}

		finished, err := store.Bookings().HasFinishedBooking(ctx, author.ID, item.ID, now)
		if err != nil {
			return err
		}
		if !finished {
			return domain.Validation("User %d has no finished booking of item %d", author.ID, item.ID)
		}

		comment := models.Comment{Text: text, ItemID: item.ID, AuthorID: author.ID, Created: now.UTC()}
		if err := store.Comments().CreateComment(ctx, &comment); err != nil {
			return err
		}
		created = &models.CommentDetails{Comment: comment, AuthorName: author.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("item_id", itemID).Int64("user_id", authorID).Int64("comment_id", created.ID).Msg("comment added")
	s.publish(ctx, events.EventCommentAdded, events.CommentEventPayload{
		CommentID: created.ID,
		ItemID:    created.ItemID,
		AuthorID:  created.AuthorID,
	})

	return models.ToCommentResponse(created), nil
}

// enrichItems attaches comments and, when withBookings is set, the last and next approved bookings.
// Each lookup is one query over all items; rows arrive in priority order so the first one per item wins.
func enrichItems(ctx context.Context, store domain.Store, items []*models.ItemResponse, withBookings bool, now time.Time) error {
	if len(items) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(items))
	byID := make(map[int64]*models.ItemResponse, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
		byID[item.ID] = item
	}

	if withBookings {
		last, err := store.Bookings().GetLastBookings(ctx, ids, now)
		if err != nil {
			return err
		}
		for _, b := range last {
			if item := byID[b.ItemID]; item != nil && item.LastBooking == nil {
				item.LastBooking = models.ToBookingShort(b)
			}
		}

		next, err := store.Bookings().GetNextBookings(ctx, ids, now)
		if err != nil {
			return err
		}
		for _, b := range next {
			if item := byID[b.ItemID]; item != nil && item.NextBooking == nil {
				item.NextBooking = models.ToBookingShort(b)
			}
		}
	}

	comments, err := store.Comments().GetCommentsByItems(ctx, ids)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if item := byID[c.ItemID]; item != nil {
			item.Comments = append(item.Comments, models.ToCommentResponse(c))
		}
	}
	return nil
}
