// Package client implements the engine's Store and Feed contracts over
// the marksd HTTP and websocket API, for use by session processes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marksync/marks/internal/api"
	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/engine"
)

const requestTimeout = 10 * time.Second

// Store talks to the bookmark write API. Every call authenticates with
// the owner it is made for.
type Store struct {
	base string
	http *http.Client
}

var _ engine.Store = (*Store)(nil)

func NewStore(baseURL string) (*Store, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: unsupported scheme %q", u.Scheme)
	}
	return &Store{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: requestTimeout},
	}, nil
}

func (s *Store) Create(ctx context.Context, owner, rawURL, title string) (*domain.Bookmark, error) {
	body, err := json.Marshal(api.CreateRequest{URL: rawURL, Title: title})
	if err != nil {
		return nil, fmt.Errorf("client: encode create: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+"/api/bookmarks", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.OwnerHeader, owner)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: create: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError("create", resp)
	}

	var rec domain.Bookmark
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("client: decode create response: %w", err)
	}
	return &rec, nil
}

func (s *Store) Delete(ctx context.Context, owner, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.base+"/api/bookmarks/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}
	req.Header.Set(api.OwnerHeader, owner)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: delete: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return apiError("delete", resp)
	}
}

func (s *Store) ListAll(ctx context.Context, owner string) ([]*domain.Bookmark, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/api/bookmarks", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(api.OwnerHeader, owner)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError("list", resp)
	}

	var payload api.ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("client: decode list response: %w", err)
	}
	out := make([]*domain.Bookmark, len(payload.Bookmarks))
	for i := range payload.Bookmarks {
		out[i] = &payload.Bookmarks[i]
	}
	return out, nil
}

// apiError surfaces the server's error message when it sent one.
func apiError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var e api.ErrorResponse
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return fmt.Errorf("client: %s: %s (status %d)", op, e.Error, resp.StatusCode)
	}
	return fmt.Errorf("client: %s: unexpected status %d", op, resp.StatusCode)
}
