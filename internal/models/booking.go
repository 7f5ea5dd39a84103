package models

import "time"

type Booking struct {
	ID       int64         `db:"id" json:"id"`
	Start    time.Time     `db:"start_at" json:"start"`
	End      time.Time     `db:"end_at" json:"end"`
	ItemID   int64         `db:"item_id" json:"item_id"`
	BookerID int64         `db:"booker_id" json:"booker_id"`
	Status   BookingStatus `db:"status" json:"status"`
}

// BookingDetails is a booking joined with the item and booker fields that
// response projections and ownership checks need.
type BookingDetails struct {
	Booking
	ItemName    string `db:"item_name"`
	ItemOwnerID int64  `db:"item_owner_id"`
	BookerName  string `db:"booker_name"`
}

// IsCurrent, IsPast and IsFuture partition any booking with End > Start:
// exactly one of them holds for a given instant.
func (b *Booking) IsCurrent(now time.Time) bool {
	return !b.Start.After(now) && b.End.After(now)
}

func (b *Booking) IsPast(now time.Time) bool {
	return !b.End.After(now)
}

func (b *Booking) IsFuture(now time.Time) bool {
	return b.Start.After(now)
}
