package models

import (
	"strings"
	"time"
)

type Comment struct {
	ID       int64     `db:"id" json:"id"`
	Text     string    `db:"text" json:"text"`
	ItemID   int64     `db:"item_id" json:"item_id"`
	AuthorID int64     `db:"author_id" json:"author_id"`
	Created  time.Time `db:"created" json:"created"`
}

// CommentDetails denormalizes the author's display name.
type CommentDetails struct {
	Comment
	AuthorName string `db:"author_name"`
}

type ItemRequest struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	RequestorID int64     `db:"requestor_id" json:"requestor_id"`
	Created     time.Time `db:"created" json:"created"`
}

func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
