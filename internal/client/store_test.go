package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marksync/marks/internal/api"
	"github.com/marksync/marks/internal/domain"
)

func TestStoreCreate(t *testing.T) {
	var gotOwner string
	var gotReq api.CreateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/bookmarks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotOwner = r.Header.Get(api.OwnerHeader)
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(domain.Bookmark{
			ID: "b1", Owner: gotOwner, URL: gotReq.URL, Title: gotReq.Title,
			CreatedAt: time.Now().UTC(),
		})
	}))
	defer srv.Close()

	s, err := NewStore(srv.URL)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	rec, err := s.Create(context.Background(), "alice", "https://example.com", "Example")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if gotOwner != "alice" {
		t.Errorf("owner header = %q, want alice", gotOwner)
	}
	if gotReq.URL != "https://example.com" || gotReq.Title != "Example" {
		t.Errorf("request body = %+v", gotReq)
	}
	if rec.ID != "b1" {
		t.Errorf("id = %q, want b1", rec.ID)
	}
}

func TestStoreCreateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "invalid url"})
	}))
	defer srv.Close()

	s, _ := NewStore(srv.URL)
	_, err := s.Create(context.Background(), "alice", "nope", "Example")
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "invalid url"; !strings.Contains(err.Error(), want) {
		t.Errorf("error %q does not mention %q", err, want)
	}
}

func TestStoreDelete(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"ok", http.StatusNoContent, nil},
		{"gone", http.StatusNotFound, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath, gotOwner string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotOwner = r.Header.Get(api.OwnerHeader)
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			s, _ := NewStore(srv.URL)
			err := s.Delete(context.Background(), "alice", "b1")
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Delete err = %v, want %v", err, tc.wantErr)
			}
			if gotPath != "/api/bookmarks/b1" {
				t.Errorf("path = %q", gotPath)
			}
			if gotOwner != "alice" {
				t.Errorf("owner header = %q, want alice", gotOwner)
			}
		})
	}
}

func TestStoreListAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ListResponse{Bookmarks: []domain.Bookmark{
			{ID: "b2", Owner: "alice", URL: "https://two.example", Title: "Two"},
			{ID: "b1", Owner: "alice", URL: "https://one.example", Title: "One"},
		}})
	}))
	defer srv.Close()

	s, _ := NewStore(srv.URL)
	got, err := s.ListAll(context.Background(), "alice")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b2" || got[1].ID != "b1" {
		t.Errorf("unexpected list %+v", got)
	}
}

func TestNewStoreRejectsBadURL(t *testing.T) {
	if _, err := NewStore("ftp://example.com"); err == nil {
		t.Fatal("expected scheme error")
	}
}
