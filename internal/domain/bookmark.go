package domain

import "time"

// Bookmark represents a single saved URL owned by one user.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	// Permanent IDs are assigned by the durable store; placeholder
	// records carry a temporary ID until the store confirms the write.
	ID string `json:"id"`

	// Owner is the identifier of the owning user. Every record in a
	// session's list belongs to that session's user; the store enforces
	// this, the engine trusts it.
	Owner string `json:"owner"`

	// ─────────────────────────────
	// Content
	// ─────────────────────────────

	// URL is the full absolute URL being bookmarked.
	URL string `json:"url"`

	// Title is the user-entered display title.
	Title string `json:"title"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is assigned by the durable store on create. Placeholder
	// records carry the local clock until the permanent record lands.
	CreatedAt time.Time `json:"created_at"`
}

// TempIDPrefix marks locally-generated placeholder IDs. The durable
// store never assigns IDs with this prefix, so a placeholder is always
// distinguishable from a confirmed record.
const TempIDPrefix = "tmp_"

// IsPlaceholder reports whether the record is an unconfirmed optimistic
// placeholder rather than a store-assigned record.
func (b *Bookmark) IsPlaceholder() bool {
	return len(b.ID) > len(TempIDPrefix) && b.ID[:len(TempIDPrefix)] == TempIDPrefix
}
