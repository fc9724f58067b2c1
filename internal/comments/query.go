package comments

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

const (
	// DefaultPageSize applies when the caller sends no limit.
	DefaultPageSize = 10
	// MaxPageSize caps the per-page limit.
	MaxPageSize = 100

	commentCacheTTL = 10 * time.Minute
)

// Page is one page of comments plus pagination metadata. TotalPages is at
// least 1 even for an empty result.
type Page struct {
	Items         []models.Comment `json:"items"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
	TotalElements int64            `json:"total_elements"`
	TotalPages    int              `json:"total_pages"`
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func newPage(items []models.Comment, page, size int, total int64) *Page {
	if items == nil {
		items = []models.Comment{}
	}
	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}
	return &Page{
		Items:         items,
		Page:          page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}
}

// Thread returns one page of the post's visible top-level comments in thread
// order. The post must exist even when it has no comments.
func (s *Service) Thread(ctx context.Context, postID uuid.UUID, page, limit int) (*Page, error) {
	if _, err := s.dir.PostOwner(ctx, postID); err != nil {
		return nil, err
	}
	page, limit = normalizePaging(page, limit)
	items, total, err := s.store.TopLevelByPost(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, limit, total), nil
}

// Replies returns one page of the parent's visible direct children ordered by
// their position in the thread group. The parent must exist; a soft-deleted
// parent still anchors visible replies.
func (s *Service) Replies(ctx context.Context, parentID uuid.UUID, page, limit int) (*Page, error) {
	if _, err := s.store.GetByID(ctx, parentID); err != nil {
		return nil, err
	}
	page, limit = normalizePaging(page, limit)
	items, total, err := s.store.RepliesByParent(ctx, parentID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return newPage(items, page, limit, total), nil
}

// Comment fetches one visible comment, read-through cached when a cache is
// wired.
func (s *Service) Comment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	if c := s.getCached(ctx, id); c != nil {
		return c, nil
	}
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}
	s.putCached(ctx, c)
	return c, nil
}

func commentCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("comment:%s", id)
}

func (s *Service) getCached(ctx context.Context, id uuid.UUID) *models.Comment {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, commentCacheKey(id)).Result()
	if err != nil {
		// Misses and transport errors both fall back to the store.
		return nil
	}
	var c models.Comment
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil
	}
	return &c
}

func (s *Service) putCached(ctx context.Context, c *models.Comment) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	s.cache.Set(ctx, commentCacheKey(c.ID), raw, commentCacheTTL)
}

func (s *Service) dropCached(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.Del(ctx, commentCacheKey(id))
}
