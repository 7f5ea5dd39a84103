package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"shareit/internal/database"
	"shareit/internal/events"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db       *database.DB
	clock    *testClock
	received []string

	users    *UserService
	items    *ItemService
	bookings *BookingService
	requests *RequestService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(context.Background(), ":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	env := &testEnv{
		db:    db,
		clock: &testClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
	}

	bus := events.NewEventBus(&logger)
	for _, eventType := range events.AllTypes {
		bus.Subscribe(eventType, func(e *events.Event) error {
			env.received = append(env.received, e.Type)
			return nil
		})
	}

	env.users = NewUserService(db, &logger)
	env.items = NewItemService(db, bus, env.clock.Now, &logger)
	env.bookings = NewBookingService(db, bus, env.clock.Now, &logger)
	env.requests = NewRequestService(db, bus, env.clock.Now, &logger)
	return env
}

func (e *testEnv) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), models.User{Name: name, Email: name + "@example.com"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) item(t *testing.T, ownerID int64, name, description string) *models.ItemResponse {
	t.Helper()
	available := true
	it, err := e.items.CreateItem(context.Background(), models.NewItem{
		Name:        name,
		Description: description,
		Available:   &available,
	}, ownerID)
	require.NoError(t, err)
	return it
}

// booking creates a booking relative to the current test clock and optionally decides it.
func (e *testEnv) booking(t *testing.T, itemID, bookerID int64, start, end time.Duration) *models.BookingResponse {
	t.Helper()
	now := e.clock.Now()
	b, err := e.bookings.CreateBooking(context.Background(), models.NewBooking{
		ItemID: itemID,
		Start:  now.Add(start),
		End:    now.Add(end),
	}, bookerID)
	require.NoError(t, err)
	return b
}

func (e *testEnv) approve(t *testing.T, bookingID, ownerID int64, approved bool) {
	t.Helper()
	_, err := e.bookings.ApproveBooking(context.Background(), bookingID, approved, ownerID)
	require.NoError(t, err)
}

func responseIDs(bookings []*models.BookingResponse) []int64 {
	out := make([]int64, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
