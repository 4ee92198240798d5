package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/marksync/marks/internal/api"
	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/logger"
)

func ownerFrom(r *http.Request) string {
	return r.Header.Get(api.OwnerHeader)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}

// ListBookmarks returns the owner's full bookmark list, most recent
// first. Sessions call this once to seed their local state.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+api.OwnerHeader+" header")
			return
		}

		records, err := d.Store.ListAll(r.Context(), owner)
		if err != nil {
			d.Logger.Error("failed to list bookmarks",
				logger.String("owner", owner),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list bookmarks")
			return
		}

		out := make([]domain.Bookmark, len(records))
		for i, rec := range records {
			out[i] = *rec
		}
		writeJSON(w, http.StatusOK, api.ListResponse{Bookmarks: out})
	}
}

// CreateBookmark validates and persists a new bookmark, echoing back the
// permanent record (id and created_at assigned by the store).
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+api.OwnerHeader+" header")
			return
		}

		var req api.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		url, title, err := domain.ValidateInput(req.URL, req.Title)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		rec, err := d.Store.Create(r.Context(), owner, url, title)
		if err != nil {
			d.Logger.Error("failed to create bookmark",
				logger.String("owner", owner),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to create bookmark")
			return
		}

		d.Logger.Info("bookmark created",
			logger.String("owner", owner),
			logger.String("id", rec.ID))
		writeJSON(w, http.StatusCreated, rec)
	}
}

// DeleteBookmark removes one of the caller's bookmarks by id. An id the
// store no longer has, or one owned by someone else, yields 404; callers
// are expected to treat that as success.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := ownerFrom(r)
		if owner == "" {
			writeError(w, http.StatusUnauthorized, "missing "+api.OwnerHeader+" header")
			return
		}

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "missing bookmark id")
			return
		}

		if err := d.Store.Delete(r.Context(), owner, id); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusNotFound, "bookmark not found")
				return
			}
			d.Logger.Error("failed to delete bookmark",
				logger.String("owner", owner),
				logger.String("id", id),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to delete bookmark")
			return
		}

		d.Logger.Info("bookmark deleted",
			logger.String("owner", owner),
			logger.String("id", id))
		w.WriteHeader(http.StatusNoContent)
	}
}
