package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/marksync/marks/internal/domain"
	"github.com/marksync/marks/internal/logger"
)

// Store is the redis-backed durable bookmark store. Every committed
// create/delete is also published on the owner's feed channel, which is
// where connected sessions get their change events from.
type Store struct {
	client *redis.Client
	logger logger.Logger
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger) *Store {
	return &Store{
		client: client,
		logger: log,
	}
}

// Create persists a new bookmark, assigning the permanent id and
// CreatedAt, and publishes the creation on the owner's feed.
func (s *Store) Create(ctx context.Context, owner, url, title string) (*domain.Bookmark, error) {
	rec := &domain.Bookmark{
		ID:        uuid.NewString(),
		Owner:     owner,
		URL:       url,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, BookmarkKey(rec.ID), data, 0)
	pipe.SAdd(ctx, OwnerIndexKey(owner), rec.ID)
	pipe.SAdd(ctx, KeyOwners, owner)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save bookmark: %w", err)
	}

	s.publish(ctx, owner, domain.Created(rec))
	return rec, nil
}

// Get retrieves a bookmark by ID
func (s *Store) Get(ctx context.Context, id string) (*domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var rec domain.Bookmark
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &rec, nil
}

// Delete removes one of the owner's bookmarks and publishes the
// deletion on the owner's feed. An id the store no longer has, or one
// belonging to someone else, returns domain.ErrNotFound; a record's
// existence is never revealed across owners.
func (s *Store) Delete(ctx context.Context, owner, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Owner != owner {
		return domain.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, BookmarkKey(id))
	pipe.SRem(ctx, OwnerIndexKey(owner), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}

	s.publish(ctx, owner, domain.Deleted(id))
	return nil
}

// ListAll retrieves all of an owner's bookmarks, ordered by CreatedAt
// descending. Used to seed a session's list state.
func (s *Store) ListAll(ctx context.Context, owner string) ([]*domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, OwnerIndexKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	records := make([]*domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Index entry without a record; the sweeper cleans these up.
			continue
		}
		var rec domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.logger.Warnf("skipping undecodable bookmark record: %v", err)
			continue
		}
		records = append(records, &rec)
	}

	SortByCreatedAtDesc(records)
	return records, nil
}

// Owners returns all owners that ever wrote a bookmark.
func (s *Store) Owners(ctx context.Context) ([]string, error) {
	owners, err := s.client.SMembers(ctx, KeyOwners).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get owners: %w", err)
	}
	return owners, nil
}

// SweepOwnerIndex removes ids from an owner's index set whose record is
// gone. Returns the number of ids removed.
func (s *Store) SweepOwnerIndex(ctx context.Context, owner string) (int, error) {
	ids, err := s.client.SMembers(ctx, OwnerIndexKey(owner)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get bookmark ids: %w", err)
	}

	removed := 0
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, BookmarkKey(id)).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to check bookmark %s: %w", id, err)
		}
		if exists == 0 {
			if err := s.client.SRem(ctx, OwnerIndexKey(owner), id).Err(); err != nil {
				return removed, fmt.Errorf("failed to remove orphan id %s: %w", id, err)
			}
			removed++
		}
	}
	return removed, nil
}

// publish pushes a change event onto the owner's feed channel. Publish
// is best effort: the write already committed, and the feed contract is
// at-least-once only for subscribers that are connected.
func (s *Store) publish(ctx context.Context, owner string, change domain.Change) {
	payload, err := domain.EncodeChange(change)
	if err != nil {
		s.logger.Errorf("failed to encode change event: %v", err)
		return
	}
	if err := s.client.Publish(ctx, FeedChannel(owner), payload).Err(); err != nil {
		s.logger.Warn("failed to publish change event",
			logger.String("owner", owner),
			logger.String("kind", string(change.Kind)),
			logger.Error(err))
	}
}

// SortByCreatedAtDesc orders records most-recent-first, ties broken by
// id for determinism.
func SortByCreatedAtDesc(records []*domain.Bookmark) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
