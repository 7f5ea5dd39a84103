package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

func (s *Store) bookingsQuery() *goqu.SelectDataset {
	return s.dialect.From(goqu.T("bookings").As("b")).Prepared(true).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id").As("id"),
			goqu.I("b.start_at").As("start_at"),
			goqu.I("b.end_at").As("end_at"),
			goqu.I("b.item_id").As("item_id"),
			goqu.I("b.booker_id").As("booker_id"),
			goqu.I("b.status").As("status"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id").As("item_owner_id"),
			goqu.I("u.name").As("booker_name"),
		)
}

// CreateBooking сохраняет новое бронирование, время хранится в UTC
func (s *Store) CreateBooking(ctx context.Context, booking *models.Booking) error {
	id, err := s.insert(ctx, "bookings", goqu.Record{
		"start_at":  booking.Start.UTC(),
		"end_at":    booking.End.UTC(),
		"item_id":   booking.ItemID,
		"booker_id": booking.BookerID,
		"status":    string(booking.Status),
	})
	if err != nil {
		return err
	}
	booking.ID = id
	return nil
}

func (s *Store) GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error) {
	var booking models.BookingDetails
	if err := s.get(ctx, &booking, s.bookingsQuery().Where(goqu.I("b.id").Eq(id))); err != nil {
		return nil, notFoundOr(err, "Booking with id %d not found", id)
	}
	return &booking, nil
}

// UpdateBookingStatus decides a WAITING booking. A booking that is missing or
// already decided is reported as not found, so only one decision ever lands.
func (s *Store) UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error {
	ds := s.dialect.Update("bookings").Prepared(true).
		Set(goqu.Record{"status": string(status)}).
		Where(
			goqu.C("id").Eq(id),
			goqu.C("status").Eq(string(models.StatusWaiting)),
		)
	result, err := s.exec(ctx, ds)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if n == 0 {
		return domain.NotFound("Booking with id %d not found or has already been processed", id)
	}
	return nil
}

func (s *Store) GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetails, error) {
	return s.bookingsByState(ctx, goqu.I("b.booker_id").Eq(bookerID), state, now)
}

func (s *Store) GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetails, error) {
	return s.bookingsByState(ctx, goqu.I("i.owner_id").Eq(ownerID), state, now)
}

func (s *Store) bookingsByState(ctx context.Context, who exp.Expression, state models.BookingState, now time.Time) ([]*models.BookingDetails, error) {
	now = now.UTC()
	where := []exp.Expression{who}
	order := []exp.OrderedExpression{goqu.I("b.start_at").Desc(), goqu.I("b.id").Desc()}

	switch state {
	case models.StateAll:
	case models.StateCurrent:
		where = append(where, goqu.I("b.start_at").Lte(now), goqu.I("b.end_at").Gt(now))
	case models.StatePast:
		where = append(where, goqu.I("b.end_at").Lte(now))
	case models.StateFuture:
		where = append(where, goqu.I("b.start_at").Gt(now))
	case models.StateWaiting:
		where = append(where, goqu.I("b.status").Eq(string(models.StatusWaiting)))
	case models.StateRejected:
		where = append(where, goqu.I("b.status").Eq(string(models.StatusRejected)))
		order = []exp.OrderedExpression{goqu.I("b.end_at").Desc(), goqu.I("b.id").Desc()}
	default:
		return nil, fmt.Errorf("unsupported booking state %q", state)
	}

	bookings := []*models.BookingDetails{}
	if err := s.selectAll(ctx, &bookings, s.bookingsQuery().Where(where...).Order(order...)); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *Store) GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.BookingDetails, error) {
	return s.approvedBookings(ctx, itemIDs,
		goqu.I("b.start_at").Lte(now.UTC()),
		goqu.I("b.end_at").Desc(),
	)
}

func (s *Store) GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.BookingDetails, error) {
	return s.approvedBookings(ctx, itemIDs,
		goqu.I("b.start_at").Gt(now.UTC()),
		goqu.I("b.end_at").Asc(),
	)
}

func (s *Store) approvedBookings(ctx context.Context, itemIDs []int64, when exp.Expression, order exp.OrderedExpression) ([]*models.BookingDetails, error) {
	bookings := []*models.BookingDetails{}
	if len(itemIDs) == 0 {
		return bookings, nil
	}
	ds := s.bookingsQuery().
		Where(
			goqu.I("b.item_id").In(itemIDs),
			goqu.I("b.status").Eq(string(models.StatusApproved)),
			when,
		).
		Order(order, goqu.I("b.id").Asc())
	if err := s.selectAll(ctx, &bookings, ds); err != nil {
		return nil, err
	}
	return bookings, nil
}

// HasFinishedBooking reports whether the booker has any booking of the item that ended before now.
func (s *Store) HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	n, err := s.count(ctx, "bookings",
		goqu.C("booker_id").Eq(bookerID),
		goqu.C("item_id").Eq(itemID),
		goqu.C("end_at").Lt(now.UTC()),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
