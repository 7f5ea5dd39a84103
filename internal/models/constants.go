package models

import (
	"errors"
	"fmt"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
)

// BookingState selects one partition of a user's bookings.
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

// ErrUnknownState is returned by ParseBookingState for tokens outside the closed set.
var ErrUnknownState = errors.New("Unknown state: UNSUPPORTED_STATUS")

// ParseBookingState maps a query token onto a BookingState. An empty token means ALL.
func ParseBookingState(raw string) (BookingState, error) {
	switch state := BookingState(raw); state {
	case "":
		return StateAll, nil
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return state, nil
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnknownState, raw)
	}
}

const (
	// MaxCommentLength ограничивает длину текста отзыва
	MaxCommentLength = 1000

	// DefaultRequestsPageSize размер страницы для GET /requests/all
	DefaultRequestsPageSize = 10

	// DefaultRateLimitRequests количество запросов в окне на пользователя
	DefaultRateLimitRequests = 120

	// DefaultRateLimitWindow окно ограничения частоты запросов
	DefaultRateLimitWindow = 60 // 1 минута в секундах
)
