package comments

import (
	"context"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
)

// allocateTopLevelRef assigns the next thread sequence number for a new
// top-level comment: highest ref on the post plus one, starting at 1. Must
// run inside a transaction so two concurrent creates cannot share a ref.
func allocateTopLevelRef(ctx context.Context, tx Store, postID uuid.UUID) (int64, error) {
	maxRef, err := tx.MaxRefForPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	return maxRef + 1, nil
}

// allocateReplyPosition places a reply directly after its parent within the
// parent's thread group. The reply inherits the parent's ref; every existing
// comment of the group at parent.RefOrder+1 or later moves up by one, and the
// freed slot is the reply's position. Must run inside a transaction with the
// parent row locked.
func allocateReplyPosition(ctx context.Context, tx Store, parent *models.Comment) (int64, int, error) {
	order := parent.RefOrder + 1
	if err := tx.ShiftRefOrder(ctx, parent.PostID, parent.Ref, order); err != nil {
		return 0, 0, err
	}
	return parent.Ref, order, nil
}
