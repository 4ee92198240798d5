package domain

import (
	"testing"
	"time"
)

func TestChangeRoundTrip(t *testing.T) {
	rec := &Bookmark{
		ID:        "id-1",
		Owner:     "alice",
		URL:       "https://example.com",
		Title:     "Example",
		CreatedAt: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	data, err := EncodeChange(Created(rec))
	if err != nil {
		t.Fatalf("EncodeChange() error: %v", err)
	}

	got, err := DecodeChange(data)
	if err != nil {
		t.Fatalf("DecodeChange() error: %v", err)
	}
	if got.Kind != ChangeCreated {
		t.Errorf("kind = %q, want %q", got.Kind, ChangeCreated)
	}
	if got.Bookmark == nil || got.Bookmark.ID != rec.ID || got.Bookmark.Title != rec.Title {
		t.Errorf("decoded bookmark = %+v, want %+v", got.Bookmark, rec)
	}
}

func TestDecodeChangeRejectsMalformedVariants(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"unknown kind", `{"kind":"renamed","id":"x"}`},
		{"created without bookmark", `{"kind":"created"}`},
		{"created with empty id", `{"kind":"created","bookmark":{"id":""}}`},
		{"deleted without id", `{"kind":"deleted"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeChange([]byte(tt.payload)); err == nil {
				t.Errorf("DecodeChange(%q) expected error, got nil", tt.payload)
			}
		})
	}
}

func TestDecodeDeleted(t *testing.T) {
	data, err := EncodeChange(Deleted("id-9"))
	if err != nil {
		t.Fatalf("EncodeChange() error: %v", err)
	}
	got, err := DecodeChange(data)
	if err != nil {
		t.Fatalf("DecodeChange() error: %v", err)
	}
	if got.Kind != ChangeDeleted || got.ID != "id-9" {
		t.Errorf("decoded = %+v, want deleted id-9", got)
	}
}
