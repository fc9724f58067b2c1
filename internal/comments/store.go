// Package comments implements the comment threading and ordering core:
// ref/refOrder allocation, lifecycle transitions with single-level delete
// cascade, and ordered paginated retrieval.
package comments

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
)

// Store is the comment persistence boundary. Every write operation of the
// Service runs inside InTx; implementations must guarantee that reads taken
// through the transactional Store (max ref, parent row, child existence) are
// isolated from concurrent writers for the rows they touch.
type Store interface {
	// InTx runs fn against a transactional view of the store. If fn returns
	// an error the transaction rolls back and no partial state remains.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// Insert persists a new comment row.
	Insert(ctx context.Context, c *models.Comment) error

	// GetByID loads a comment row whether or not it is soft-deleted.
	// Returns a not-found error when no row exists.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// GetByIDForUpdate is GetByID with a row lock held until the enclosing
	// transaction ends. Serializes concurrent replies and deletes that target
	// the same parent.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error)

	// MaxRefForPost reports the highest ref in use on the post, 0 when the
	// post has no comments. Inside a transaction the read must be serialized
	// per post so two top-level creates cannot allocate the same ref.
	MaxRefForPost(ctx context.Context, postID uuid.UUID) (int64, error)

	// ShiftRefOrder opens a slot at fromOrder: every comment of the (post,
	// ref) group with ref_order >= fromOrder moves up by one, in a single
	// bulk update.
	ShiftRefOrder(ctx context.Context, postID uuid.UUID, ref int64, fromOrder int) error

	// BumpAnswerNum atomically adds delta to the comment's answer counter.
	BumpAnswerNum(ctx context.Context, id uuid.UUID, delta int) error

	// UpdateContent replaces the comment's content.
	UpdateContent(ctx context.Context, id uuid.UUID, content string) error

	// MarkDeleted soft-deletes the row: is_deleted is set and the content is
	// replaced by marker. The ref/ref_order slot is retained.
	MarkDeleted(ctx context.Context, id uuid.UUID, marker string) error

	// Delete removes the row entirely.
	Delete(ctx context.Context, id uuid.UUID) error

	// HasReplies reports whether any row (deleted or not) references id as
	// its parent.
	HasReplies(ctx context.Context, parentID uuid.UUID) (bool, error)

	// TopLevelByPost returns the post's visible top-level comments in thread
	// order plus the total count of such rows.
	TopLevelByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]models.Comment, int64, error)

	// RepliesByParent returns the visible direct children of parentID ordered
	// by ref_order plus the total count of such rows.
	RepliesByParent(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]models.Comment, int64, error)
}

// Directory resolves members and posts. Both live outside the comment core;
// it only needs existence, the acting username and the post owner.
type Directory interface {
	MemberUsername(ctx context.Context, id uuid.UUID) (string, error)
	PostOwner(ctx context.Context, postID uuid.UUID) (uuid.UUID, error)
}

// CommentCreatedEvent is emitted after a successful top-level or reply
// creation, for downstream notification delivery.
type CommentCreatedEvent struct {
	ActingUsername string
	ActorID        uuid.UUID
	PostOwnerID    uuid.UUID
	CommentID      uuid.UUID
	PostID         uuid.UUID
	IsReply        bool
}

// EventSink receives comment events. Delivery is fire-and-forget from the
// core's perspective; sinks must not block the caller.
type EventSink interface {
	CommentCreated(ev CommentCreatedEvent)
}
