package service

import (
	"context"
	"time"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type BookingService struct {
	base
}

var _ domain.BookingService = (*BookingService)(nil)

func NewBookingService(tx domain.Transactor, eventBus domain.EventPublisher, clock domain.Clock, logger *zerolog.Logger) *BookingService {
	return &BookingService{base: newBase(tx, eventBus, clock, logger, "booking_service")}
}

// ValidateBookingDates checks the request shape before any lookups happen.
func ValidateBookingDates(req models.NewBooking, now time.Time) error {
	if req.ItemID == 0 {
		return domain.Validation("Item id is required")
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return domain.Validation("Booking start and end are required")
	}
	// Проверяем, что период не пустой
	if !req.End.After(req.Start) {
		return domain.Validation("Booking end must be after start")
	}
	// Проверяем, что дата не в прошлом
	if req.Start.Before(now) {
		return domain.Validation("Booking start must not be in the past")
	}
	return nil
}

func (s *BookingService) CreateBooking(ctx context.Context, req models.NewBooking, bookerID int64) (*models.BookingResponse, error) {
	if err := ValidateBookingDates(req, s.now()); err != nil {
		return nil, err
	}

	var created *models.BookingDetails
	err := s.write(ctx, func(store domain.Store) error {
		booker, err := store.Users().GetUserByID(ctx, bookerID)
		if err != nil {
			return err
		}
		item, err := store.Items().GetItemByID(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return domain.Validation("Item %d is not available for booking", item.ID)
		}
		if item.OwnerID == bookerID {
			return domain.NotAllowed("Owner cannot book own item %d", item.ID)
		}

		booking := models.Booking{
			Start:    req.Start.UTC(),
			End:      req.End.UTC(),
			ItemID:   item.ID,
			BookerID: booker.ID,
			Status:   models.StatusWaiting,
		}
		if err := store.Bookings().CreateBooking(ctx, &booking); err != nil {
			return err
		}

		created = &models.BookingDetails{
			Booking:     booking,
			ItemName:    item.Name,
			ItemOwnerID: item.OwnerID,
			BookerName:  booker.Name,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().
		Int64("booking_id", created.ID).
		Int64("item_id", created.ItemID).
		Int64("user_id", bookerID).
		Msg("booking created")
	s.publish(ctx, events.EventBookingCreated, bookingPayload(created, bookerID))

	return models.ToBookingResponse(created), nil
}

// ApproveBooking moves a WAITING booking to APPROVED or REJECTED. Only the item owner may decide, and only once.
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingResponse, error) {
	var booking *models.BookingDetails
	err := s.write(ctx, func(store domain.Store) error {
		var err error
		booking, err = store.Bookings().GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.ItemOwnerID != callerID {
			return domain.Forbidden("User %d is not the owner of item %d", callerID, booking.ItemID)
		}
		if booking.Status != models.StatusWaiting {
			return domain.NotFound("Booking with id %d has already been processed", bookingID)
		}

		status := models.StatusRejected
		if approved {
			status = models.StatusApproved
		}
		if err := store.Bookings().UpdateBookingStatus(ctx, bookingID, status); err != nil {
			return err
		}
		booking.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.EventBookingRejected
	if approved {
		eventType = events.EventBookingApproved
	}
	s.log(ctx).Info().
		Int64("booking_id", bookingID).
		Int64("user_id", callerID).
		Str("status", string(booking.Status)).
		Msg("booking processed")
	s.publish(ctx, eventType, bookingPayload(booking, callerID))

	return models.ToBookingResponse(booking), nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, callerID int64) (*models.BookingResponse, error) {
	var booking *models.BookingDetails
	err := s.read(ctx, func(store domain.Store) error {
		var err error
		booking, err = store.Bookings().GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking.BookerID != callerID && booking.ItemOwnerID != callerID {
			return domain.Forbidden("User %d has no access to booking %d", callerID, bookingID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return models.ToBookingResponse(booking), nil
}

func (s *BookingService) GetBookingsByBooker(ctx context.Context, state string, bookerID int64) ([]*models.BookingResponse, error) {
	return s.list(ctx, state, bookerID, func(store domain.Store, st models.BookingState, now time.Time) ([]*models.BookingDetails, error) {
		return store.Bookings().GetBookingsByBooker(ctx, bookerID, st, now)
	})
}

func (s *BookingService) GetBookingsByOwner(ctx context.Context, state string, ownerID int64) ([]*models.BookingResponse, error) {
	return s.list(ctx, state, ownerID, func(store domain.Store, st models.BookingState, now time.Time) ([]*models.BookingDetails, error) {
		return store.Bookings().GetBookingsByOwner(ctx, ownerID, st, now)
	})
}

type bookingLister func(store domain.Store, state models.BookingState, now time.Time) ([]*models.BookingDetails, error)

func (s *BookingService) list(ctx context.Context, rawState string, actorID int64, fetch bookingLister) ([]*models.BookingResponse, error) {
	state, err := models.ParseBookingState(rawState)
	if err != nil {
		return nil, domain.Validation("%s", models.ErrUnknownState.Error())
	}

	now := s.now()
	var bookings []*models.BookingDetails
	err = s.read(ctx, func(store domain.Store) error {
		if _, err := store.Users().GetUserByID(ctx, actorID); err != nil {
			return err
		}
		bookings, err = fetch(store, state, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	result := make([]*models.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		result = append(result, models.ToBookingResponse(b))
	}
	return result, nil
}

func bookingPayload(b *models.BookingDetails, changedBy int64) events.BookingEventPayload {
	return events.BookingEventPayload{
		BookingID:   b.ID,
		BookerID:    b.BookerID,
		ItemID:      b.ItemID,
		ItemOwnerID: b.ItemOwnerID,
		Status:      string(b.Status),
		Start:       b.Start,
		End:         b.End,
		ChangedByID: changedBy,
	}
}
