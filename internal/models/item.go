package models

import "database/sql"

type Item struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Available   bool          `db:"available" json:"available"`
	OwnerID     int64         `db:"owner_id" json:"owner_id"`
	RequestID   sql.NullInt64 `db:"request_id" json:"-"`
}

// ItemDetails carries the owner name alongside the item for short owner projections.
type ItemDetails struct {
	Item
	OwnerName string `db:"owner_name"`
}

// ItemPatch holds optional overrides for a partial item update.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// MergeItem applies non-nil, non-blank overrides to a copy of current.
// A blank string never clears a field.
func MergeItem(current Item, patch ItemPatch) Item {
	merged := current
	if present(patch.Name) {
		merged.Name = *patch.Name
	}
	if present(patch.Description) {
		merged.Description = *patch.Description
	}
	if patch.Available != nil {
		merged.Available = *patch.Available
	}
	return merged
}
