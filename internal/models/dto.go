package models

import "time"

// NewBooking is built by the HTTP layer after timestamps are parsed.
type NewBooking struct {
	ItemID int64
	Start  time.Time
	End    time.Time
}

type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

type UserShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ItemShort struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type BookingShort struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	BookerID int64         `json:"bookerId"`
}

type BookingResponse struct {
	ID     int64         `json:"id"`
	Start  time.Time     `json:"start"`
	End    time.Time     `json:"end"`
	Item   ItemShort     `json:"item"`
	Booker UserShort     `json:"booker"`
	Status BookingStatus `json:"status"`
}

type CommentResponse struct {
	ID         int64     `json:"id"`
	Text       string    `json:"text"`
	AuthorName string    `json:"authorName"`
	Created    time.Time `json:"created"`
}

type ItemResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Available   bool               `json:"available"`
	Owner       UserShort          `json:"owner"`
	RequestID   *int64             `json:"requestId,omitempty"`
	LastBooking *BookingShort      `json:"lastBooking"`
	NextBooking *BookingShort      `json:"nextBooking"`
	Comments    []*CommentResponse `json:"comments"`
}

type ItemRequestResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	RequestorID int64           `json:"requestorId"`
	Created     time.Time       `json:"created"`
	Items       []*ItemResponse `json:"items"`
}

func ToBookingResponse(b *BookingDetails) *BookingResponse {
	return &BookingResponse{
		ID:     b.ID,
		Start:  b.Start,
		End:    b.End,
		Item:   ItemShort{ID: b.ItemID, Name: b.ItemName},
		Booker: UserShort{ID: b.BookerID, Name: b.BookerName},
		Status: b.Status,
	}
}

func ToBookingShort(b *BookingDetails) *BookingShort {
	return &BookingShort{
		ID:       b.ID,
		Start:    b.Start,
		End:      b.End,
		Status:   b.Status,
		BookerID: b.BookerID,
	}
}

// ToItemResponse maps an item without enrichment.
func ToItemResponse(item *ItemDetails) *ItemResponse {
	resp := &ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		Owner:       UserShort{ID: item.OwnerID, Name: item.OwnerName},
		Comments:    []*CommentResponse{},
	}
	if item.RequestID.Valid {
		requestID := item.RequestID.Int64
		resp.RequestID = &requestID
	}
	return resp
}

func ToCommentResponse(c *CommentDetails) *CommentResponse {
	return &CommentResponse{
		ID:         c.ID,
		Text:       c.Text,
		AuthorName: c.AuthorName,
		Created:    c.Created,
	}
}

func ToItemRequestResponse(r *ItemRequest) *ItemRequestResponse {
	return &ItemRequestResponse{
		ID:          r.ID,
		Description: r.Description,
		RequestorID: r.RequestorID,
		Created:     r.Created,
		Items:       []*ItemResponse{},
	}
}
