package domain

import (
	"context"
	"time"

	"shareit/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
	IsUserReferenced(ctx context.Context, id int64) (bool, error)
}

type ItemRepository interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItemByID(ctx context.Context, id int64) (*models.ItemDetails, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.ItemDetails, error)
	SearchItems(ctx context.Context, text string) ([]*models.ItemDetails, error)
	GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.ItemDetails, error)
}

type BookingRepository interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.BookingDetails, error)
	UpdateBookingStatus(ctx context.Context, id int64, status models.BookingStatus) error
	GetBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetails, error)
	GetBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]*models.BookingDetails, error)
	// GetLastBookings returns approved bookings started at or before now, ordered by end descending.
	GetLastBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.BookingDetails, error)
	// GetNextBookings returns approved bookings starting after now, ordered by end ascending.
	GetNextBookings(ctx context.Context, itemIDs []int64, now time.Time) ([]*models.BookingDetails, error)
	HasFinishedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.CommentDetails, error)
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error)
	GetRequestsExcept(ctx context.Context, requestorID int64, offset, limit int) ([]*models.ItemRequest, error)
}

// Store groups the repositories bound to one unit of work.
type Store interface {
	Users() UserRepository
	Items() ItemRepository
	Bookings() BookingRepository
	Comments() CommentRepository
	Requests() RequestRepository
}

// Transactor runs fn inside a single store transaction. The transaction is
// committed when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, readOnly bool, fn func(store Store) error) error
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type Clock func() time.Time

type BookingService interface {
	CreateBooking(ctx context.Context, req models.NewBooking, bookerID int64) (*models.BookingResponse, error)
	ApproveBooking(ctx context.Context, bookingID int64, approved bool, callerID int64) (*models.BookingResponse, error)
	GetBooking(ctx context.Context, bookingID, callerID int64) (*models.BookingResponse, error)
	GetBookingsByBooker(ctx context.Context, state string, bookerID int64) ([]*models.BookingResponse, error)
	GetBookingsByOwner(ctx context.Context, state string, ownerID int64) ([]*models.BookingResponse, error)
}

type ItemService interface {
	CreateItem(ctx context.Context, req models.NewItem, ownerID int64) (*models.ItemResponse, error)
	UpdateItem(ctx context.Context, itemID int64, patch models.ItemPatch, callerID int64) (*models.ItemResponse, error)
	GetItem(ctx context.Context, itemID, callerID int64) (*models.ItemResponse, error)
	GetItemsByOwner(ctx context.Context, ownerID int64) ([]*models.ItemResponse, error)
	SearchItems(ctx context.Context, text string) ([]*models.ItemResponse, error)
	AddComment(ctx context.Context, itemID int64, text string, authorID int64) (*models.CommentResponse, error)
}

type RequestService interface {
	CreateRequest(ctx context.Context, description string, requestorID int64) (*models.ItemRequestResponse, error)
	GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequestResponse, error)
	GetAllRequests(ctx context.Context, requestorID int64, from, size int) ([]*models.ItemRequestResponse, error)
	GetRequest(ctx context.Context, requestID, callerID int64) (*models.ItemRequestResponse, error)
}

type UserService interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	GetAllUsers(ctx context.Context) ([]*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}
