package comments

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	storage "github.com/pulsefeedhq/pulsefeed/pkg/redis"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

// deletedContentMarker replaces the content of a soft-deleted comment. The
// row keeps its slot so replies stay positioned under a visible placeholder.
const deletedContentMarker = "This comment has been deleted."

const maxContentLength = 1000

// Service is the comment engine facade: creation, modification, deletion and
// ordered retrieval. All writes are transactional through Store.InTx.
type Service struct {
	store  Store
	dir    Directory
	events EventSink
	cache  *storage.RedisClient
}

// NewService builds a Service. events and cache may be nil; creation then
// emits nothing and reads always hit the store.
func NewService(store Store, dir Directory, events EventSink, cache *storage.RedisClient) *Service {
	return &Service{store: store, dir: dir, events: events, cache: cache}
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", utils.NewError(utils.ErrBadRequest.Code, "Comment content must not be empty")
	}
	if len(content) > maxContentLength {
		return "", utils.NewError(utils.ErrBadRequest.Code, "Comment content is too long")
	}
	return content, nil
}

// CreateTopLevel opens a new thread on the post. The comment gets the post's
// next ref and position 0 within its own group.
func (s *Service) CreateTopLevel(ctx context.Context, postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	username, err := s.dir.MemberUsername(ctx, authorID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.dir.PostOwner(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:       uuid.New(),
		Content:  content,
		PostID:   postID,
		AuthorID: authorID,
		RefOrder: 0,
	}
	err = s.store.InTx(ctx, func(tx Store) error {
		ref, err := allocateTopLevelRef(ctx, tx, postID)
		if err != nil {
			return err
		}
		comment.Ref = ref
		return tx.Insert(ctx, comment)
	})
	if err != nil {
		return nil, err
	}

	s.emitCreated(username, authorID, ownerID, comment, false)
	return comment, nil
}

// CreateReply inserts a reply directly after its parent in the parent's
// thread group and bumps the parent's answer counter. Replying to a
// soft-deleted parent is allowed; the placeholder stays visible above the
// reply.
func (s *Service) CreateReply(ctx context.Context, parentID, authorID uuid.UUID, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}
	username, err := s.dir.MemberUsername(ctx, authorID)
	if err != nil {
		return nil, err
	}
	probe, err := s.store.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	ownerID, err := s.dir.PostOwner(ctx, probe.PostID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:       uuid.New(),
		Content:  content,
		AuthorID: authorID,
	}
	err = s.store.InTx(ctx, func(tx Store) error {
		// Re-read under lock: the probe above may be stale by the time the
		// transaction starts, and concurrent siblings must serialize here.
		parent, err := tx.GetByIDForUpdate(ctx, parentID)
		if err != nil {
			return err
		}
		ref, order, err := allocateReplyPosition(ctx, tx, parent)
		if err != nil {
			return err
		}
		comment.PostID = parent.PostID
		comment.ParentID = &parent.ID
		comment.Ref = ref
		comment.RefOrder = order
		if err := tx.Insert(ctx, comment); err != nil {
			return err
		}
		return tx.BumpAnswerNum(ctx, parent.ID, 1)
	})
	if err != nil {
		return nil, err
	}

	s.dropCached(ctx, parentID)
	s.emitCreated(username, authorID, ownerID, comment, true)
	return comment, nil
}

// Modify replaces the content of the caller's own comment. Soft-deleted
// comments are treated as gone.
func (s *Service) Modify(ctx context.Context, commentID, actorID uuid.UUID, content string) (*models.Comment, error) {
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	var updated *models.Comment
	err = s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.GetByID(ctx, commentID)
		if err != nil {
			return err
		}
		if c.IsDeleted {
			return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		if c.AuthorID != actorID {
			return utils.NewError(utils.ErrForbidden.Code, "Only the author can modify this comment")
		}
		if err := tx.UpdateContent(ctx, c.ID, content); err != nil {
			return err
		}
		c.Content = content
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCached(ctx, commentID)
	return updated, nil
}

// DeleteResult reports what a delete did.
type DeleteResult struct {
	ID          uuid.UUID  `json:"id"`
	SoftDeleted bool       `json:"soft_deleted"`
	CascadedID  *uuid.UUID `json:"cascaded_id,omitempty"`
}

// Delete removes the caller's own comment. A comment with replies is
// soft-deleted in place so its subtree keeps a visible anchor; a childless
// comment is removed outright, after which the single-level cascade may also
// remove its already soft-deleted parent.
func (s *Service) Delete(ctx context.Context, commentID, actorID uuid.UUID) (*DeleteResult, error) {
	var result *DeleteResult
	err := s.store.InTx(ctx, func(tx Store) error {
		c, err := tx.GetByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		if c.IsDeleted {
			return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		if c.AuthorID != actorID {
			return utils.NewError(utils.ErrForbidden.Code, "Only the author can delete this comment")
		}

		hasReplies, err := tx.HasReplies(ctx, c.ID)
		if err != nil {
			return err
		}
		if hasReplies {
			if err := tx.MarkDeleted(ctx, c.ID, deletedContentMarker); err != nil {
				return err
			}
			result = &DeleteResult{ID: c.ID, SoftDeleted: true}
			return nil
		}

		if err := tx.Delete(ctx, c.ID); err != nil {
			return err
		}
		cascaded, err := cascadeParent(ctx, tx, c.ParentID)
		if err != nil {
			return err
		}
		result = &DeleteResult{ID: c.ID, CascadedID: cascaded}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dropCached(ctx, commentID)
	if result.CascadedID != nil {
		s.dropCached(ctx, *result.CascadedID)
	}
	return result, nil
}

// cascadeParent applies the single-level cleanup after a hard delete: when
// the removed comment's immediate parent is soft-deleted and now childless,
// the placeholder row is removed too. The cascade never walks further up.
func cascadeParent(ctx context.Context, tx Store, parentID *uuid.UUID) (*uuid.UUID, error) {
	if parentID == nil {
		return nil, nil
	}
	parent, err := tx.GetByIDForUpdate(ctx, *parentID)
	if err != nil {
		if utils.ErrorCode(err) == utils.ErrNotFound.Code {
			return nil, nil
		}
		return nil, err
	}
	if !parent.IsDeleted {
		return nil, nil
	}
	hasReplies, err := tx.HasReplies(ctx, parent.ID)
	if err != nil {
		return nil, err
	}
	if hasReplies {
		return nil, nil
	}
	if err := tx.Delete(ctx, parent.ID); err != nil {
		return nil, err
	}
	return &parent.ID, nil
}

func (s *Service) emitCreated(username string, actorID, ownerID uuid.UUID, c *models.Comment, isReply bool) {
	if s.events == nil {
		return
	}
	s.events.CommentCreated(CommentCreatedEvent{
		ActingUsername: username,
		ActorID:        actorID,
		PostOwnerID:    ownerID,
		CommentID:      c.ID,
		PostID:         c.PostID,
		IsReply:        isReply,
	})
}
