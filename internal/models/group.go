package models

// Group represents a fixed set of members who share expenses.
// Membership is immutable after creation; the creator is always a member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string `json:"name"`

	// CreatorID is the user who created the group. The creator is the
	// default payer for expenses that name no explicit payer.
	CreatorID string `json:"creator_id"`

	// Members is the list of member user ids, in insertion order.
	// Insertion order matters for display only.
	Members []string `json:"members"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"created_at"`
}

// HasMember reports whether userID is a member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
