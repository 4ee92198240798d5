package domain

import (
	"encoding/json"
	"fmt"
)

// ChangeKind tags the variant of a change event.
type ChangeKind string

const (
	// ChangeCreated means a record was committed to the durable store.
	ChangeCreated ChangeKind = "created"
	// ChangeDeleted means a record was removed from the durable store.
	ChangeDeleted ChangeKind = "deleted"
)

// Change is one entry of the server-pushed change feed, scoped to a
// single owner. It is a tagged variant: Created carries the full record,
// Deleted carries only the id. The feed boundary decodes the wire
// payload into this type exactly once; nothing downstream sees raw JSON.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Bookmark *Bookmark  `json:"bookmark,omitempty"` // set when Kind == ChangeCreated
	ID       string     `json:"id,omitempty"`       // set when Kind == ChangeDeleted
}

// Created builds a creation event for a committed record.
func Created(b *Bookmark) Change {
	return Change{Kind: ChangeCreated, Bookmark: b}
}

// Deleted builds a deletion event for a removed record id.
func Deleted(id string) Change {
	return Change{Kind: ChangeDeleted, ID: id}
}

// EncodeChange serializes a change event for the feed transport.
func EncodeChange(c Change) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change event: %w", err)
	}
	return data, nil
}

// DecodeChange parses a wire payload into a Change and rejects payloads
// that do not form a valid variant.
func DecodeChange(data []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(data, &c); err != nil {
		return Change{}, fmt.Errorf("failed to parse change event: %w", err)
	}
	switch c.Kind {
	case ChangeCreated:
		if c.Bookmark == nil || c.Bookmark.ID == "" {
			return Change{}, fmt.Errorf("created event without bookmark payload")
		}
	case ChangeDeleted:
		if c.ID == "" {
			return Change{}, fmt.Errorf("deleted event without id")
		}
	default:
		return Change{}, fmt.Errorf("unknown change kind: %q", c.Kind)
	}
	return c, nil
}
