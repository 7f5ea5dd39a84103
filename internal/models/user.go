package models

type User struct {
	ID    int64  `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Email string `db:"email" json:"email"`
}

type UserPatch struct {
	Name  *string
	Email *string
}

// MergeUser applies non-nil, non-blank overrides to a copy of current.
// A user cannot blank out a field through a patch.
func MergeUser(current User, patch UserPatch) User {
	merged := current
	if present(patch.Name) {
		merged.Name = *patch.Name
	}
	if present(patch.Email) {
		merged.Email = *patch.Email
	}
	return merged
}
