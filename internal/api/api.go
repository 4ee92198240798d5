// Package api holds the wire contract shared by the HTTP server and the
// session client: header names and request/response shapes.
package api

import "github.com/marksync/marks/internal/domain"

// OwnerHeader carries the authenticated user id. Authentication itself
// happens upstream (identity-aware proxy); the API trusts the header.
const OwnerHeader = "X-Marks-User"

type CreateRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type ListResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
