package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL means the submitted URL is not a well-formed
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("url must be a well-formed absolute URL")

	// ErrEmptyTitle means the submitted title is empty after trimming.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrNotFound means the durable store has no record with the given
	// id. Callers deleting a record treat this as success: the record is
	// gone either way.
	ErrNotFound = errors.New("bookmark not found")
)

// ValidateInput checks a create submission before any state is touched.
// It returns the trimmed url and title on success.
func ValidateInput(rawURL, rawTitle string) (string, string, error) {
	u := strings.TrimSpace(rawURL)
	title := strings.TrimSpace(rawTitle)

	parsed, err := url.Parse(u)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, u)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}

	if title == "" {
		return "", "", ErrEmptyTitle
	}

	return u, title, nil
}
