package redis

// Key layout:
//
//	marks:bookmark:<id>         JSON-encoded bookmark record
//	marks:user:<owner>:marks    set of bookmark ids owned by <owner>
//	marks:owners                set of all owners with at least one write
//	marks:feed:<owner>          pub/sub channel carrying change events
const (
	// KeyPrefixBookmark is the prefix for bookmark record keys
	KeyPrefixBookmark = "marks:bookmark:"
	// KeyOwners is the set of all known owners
	KeyOwners = "marks:owners"
)

// BookmarkKey returns the Redis key for a bookmark record
func BookmarkKey(id string) string {
	return KeyPrefixBookmark + id
}

// OwnerIndexKey returns the key of the set holding an owner's bookmark ids
func OwnerIndexKey(owner string) string {
	return "marks:user:" + owner + ":marks"
}

// FeedChannel returns the pub/sub channel carrying an owner's change events
func FeedChannel(owner string) string {
	return "marks:feed:" + owner
}
