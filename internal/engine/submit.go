package engine

import (
	"errors"

	"github.com/google/uuid"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/logger"
)

// Create validates the submission, applies an optimistic placeholder and
// issues the durable write. The caller may clear its input fields as
// soon as this returns; on failure the rollback notice carries the
// entered values back for restoration.
func (e *Engine) Create(rawURL, rawTitle string) {
	url, title, err := domain.ValidateInput(rawURL, rawTitle)
	if err != nil {
		e.notify(Notice{
			Kind:   NoticeValidation,
			Reason: err.Error(),
			URL:    rawURL,
			Title:  rawTitle,
		})
		return
	}

	e.post(func() {
		tempID := domain.TempIDPrefix + uuid.NewString()
		placeholder := &domain.Bookmark{
			ID:        tempID,
			Owner:     e.owner,
			URL:       url,
			Title:     title,
			CreatedAt: e.now(),
		}
		e.state.InsertAtFront(placeholder)
		go e.resolveCreate(tempID, url, title)
	})
}

// resolveCreate runs off-loop: it awaits the store response and posts
// the reconciliation back onto the loop. When the engine stopped in the
// meantime, the post is refused and the resolution is a no-op.
func (e *Engine) resolveCreate(tempID, url, title string) {
	rec, err := e.store.Create(e.writeCtx, e.owner, url, title)

	posted := e.post(func() {
		if err != nil {
			e.state.RemoveByID(tempID)
			e.logger.Warn("create rejected, optimistic insert rolled back",
				logger.String("url", url),
				logger.Error(err))
			e.notify(Notice{
				Kind:   NoticeCreateFailed,
				Reason: err.Error(),
				URL:    url,
				Title:  title,
			})
			return
		}

		if e.state.Has(tempID) {
			e.state.ReplaceByID(tempID, rec)
			return
		}
		// The placeholder vanished while the request was in flight: the
		// user deleted the pending row. Honor that intent by deleting
		// the record the store just created.
		e.logger.Info("placeholder deleted mid-flight, compensating",
			logger.String("id", rec.ID))
		go func() {
			if err := e.store.Delete(e.writeCtx, e.owner, rec.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				e.logger.Warnf("compensating delete failed for %s: %v", rec.ID, err)
			}
		}()
	})
	if !posted && err == nil {
		e.logger.Debug("create resolved after teardown, ignored",
			logger.String("id", rec.ID))
	}
}

// Delete removes the record optimistically and issues the durable
// delete. Deleting an id that is not in the list is a no-op.
func (e *Engine) Delete(id string) {
	e.post(func() {
		rec, ok := e.state.Get(id)
		if !ok {
			return
		}
		captured := *rec
		e.state.RemoveByID(id)

		// A placeholder has no durable row yet. The local removal is
		// enough; resolveCreate compensates if the create later lands.
		if captured.IsPlaceholder() {
			return
		}
		go e.resolveDelete(captured)
	})
}

// resolveDelete awaits the store response off-loop. A "not found" from
// the store means another session already deleted the record, which is
// the outcome the user asked for.
func (e *Engine) resolveDelete(captured domain.Bookmark) {
	err := e.store.Delete(e.writeCtx, e.owner, captured.ID)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		return
	}

	posted := e.post(func() {
		// Roll back: the sorted insert puts the record back at its
		// CreatedAt position, not blindly at the front.
		e.state.InsertAtFront(&captured)
		e.logger.Warn("delete rejected, record restored",
			logger.String("id", captured.ID),
			logger.Error(err))
		e.notify(Notice{
			Kind:   NoticeDeleteFailed,
			Reason: err.Error(),
			URL:    captured.URL,
			Title:  captured.Title,
		})
	})
	if !posted {
		e.logger.Debug("delete resolved after teardown, ignored",
			logger.String("id", captured.ID))
	}
}
