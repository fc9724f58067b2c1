package comments

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTopLevelRejectsBlankContent(t *testing.T) {
	f := newFixture(t)

	for _, content := range []string{"", "   ", "\n\t"} {
		_, err := f.svc.CreateTopLevel(context.Background(), f.postID, f.aliceID, content)
		require.Error(t, err)
		assert.Equal(t, utils.ErrBadRequest.Code, utils.ErrorCode(err))
	}
}

func TestCreateTopLevelRejectsOversizedContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTopLevel(context.Background(), f.postID, f.aliceID, strings.Repeat("x", maxContentLength+1))
	require.Error(t, err)
	assert.Equal(t, utils.ErrBadRequest.Code, utils.ErrorCode(err))
}

func TestCreateTopLevelUnknownAuthor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTopLevel(context.Background(), f.postID, uuid.New(), "hello")
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestCreateReplyUnknownParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateReply(context.Background(), uuid.New(), f.aliceID, "hello")
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestCreateReplyToSoftDeletedParent(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")

	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)
	require.True(t, f.reload(t, a.ID).IsDeleted)

	// The placeholder still anchors the thread, so new replies land under it.
	c := f.mustReply(t, a.ID, f.aliceID, "C")
	assert.Equal(t, 1, c.RefOrder)
	assert.Equal(t, 2, f.reload(t, b.ID).RefOrder)
}

func TestModifyOwnComment(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "original")
	updated, err := f.svc.Modify(context.Background(), a.ID, f.aliceID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "edited", f.reload(t, a.ID).Content)
	assert.Equal(t, a.Ref, updated.Ref, "position never changes on edit")
	assert.Equal(t, a.RefOrder, updated.RefOrder)
}

func TestModifyByNonAuthorForbidden(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "original")
	_, err := f.svc.Modify(context.Background(), a.ID, f.bobID, "hijacked")
	require.Error(t, err)
	assert.Equal(t, utils.ErrForbidden.Code, utils.ErrorCode(err))
	assert.Equal(t, "original", f.reload(t, a.ID).Content)
}

func TestModifySoftDeletedCommentNotFound(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	f.mustReply(t, a.ID, f.bobID, "B")
	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)

	_, err = f.svc.Modify(context.Background(), a.ID, f.aliceID, "too late")
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestDeleteWithRepliesSoftDeletes(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")

	result, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)
	assert.True(t, result.SoftDeleted)
	assert.Nil(t, result.CascadedID)

	got := f.reload(t, a.ID)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, deletedContentMarker, got.Content)
	assert.Equal(t, a.Ref, got.Ref, "the slot survives soft deletion")
	assert.Equal(t, a.RefOrder, got.RefOrder)
	assert.Equal(t, 1, f.reload(t, b.ID).RefOrder, "replies keep their positions")
}

func TestDeleteChildlessRemovesRow(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	result, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)
	assert.False(t, result.SoftDeleted)

	_, err = f.store.GetByID(context.Background(), a.ID)
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestDeleteByNonAuthorForbidden(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	_, err := f.svc.Delete(context.Background(), a.ID, f.bobID)
	require.Error(t, err)
	assert.Equal(t, utils.ErrForbidden.Code, utils.ErrorCode(err))
	assert.False(t, f.reload(t, a.ID).IsDeleted)
}

func TestDeleteSoftDeletedCommentNotFound(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	f.mustReply(t, a.ID, f.bobID, "B")
	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)

	_, err = f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestDeleteCascadeRemovesSoftDeletedParent(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")

	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)

	result, err := f.svc.Delete(context.Background(), b.ID, f.bobID)
	require.NoError(t, err)
	require.NotNil(t, result.CascadedID)
	assert.Equal(t, a.ID, *result.CascadedID)

	_, err = f.store.GetByID(context.Background(), a.ID)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err), "the childless placeholder goes with its last reply")
	_, err = f.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestDeleteCascadeSkipsActiveParent(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")

	result, err := f.svc.Delete(context.Background(), b.ID, f.bobID)
	require.NoError(t, err)
	assert.Nil(t, result.CascadedID)
	assert.False(t, f.reload(t, a.ID).IsDeleted)
}

func TestDeleteCascadeStopsAfterOneLevel(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")
	c := f.mustReply(t, b.ID, f.aliceID, "C")

	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)
	_, err = f.svc.Delete(context.Background(), b.ID, f.bobID)
	require.NoError(t, err)

	result, err := f.svc.Delete(context.Background(), c.ID, f.aliceID)
	require.NoError(t, err)
	require.NotNil(t, result.CascadedID)
	assert.Equal(t, b.ID, *result.CascadedID)

	// B is gone, but the cascade never climbs to A even though A is now a
	// childless placeholder.
	_, err = f.store.GetByID(context.Background(), b.ID)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
	got := f.reload(t, a.ID)
	assert.True(t, got.IsDeleted)
}

func TestDeleteCascadeKeepsParentWithOtherReplies(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")
	f.mustReply(t, a.ID, f.aliceID, "C")

	_, err := f.svc.Delete(context.Background(), a.ID, f.aliceID)
	require.NoError(t, err)

	result, err := f.svc.Delete(context.Background(), b.ID, f.bobID)
	require.NoError(t, err)
	assert.Nil(t, result.CascadedID, "a placeholder with remaining replies stays")
	assert.True(t, f.reload(t, a.ID).IsDeleted)
}

func TestCommentCreatedEvents(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	f.mustReply(t, a.ID, f.bobID, "B")

	events := f.sink.recorded()
	require.Len(t, events, 2)

	assert.Equal(t, "alice", events[0].ActingUsername)
	assert.Equal(t, f.aliceID, events[0].ActorID)
	assert.Equal(t, f.ownerID, events[0].PostOwnerID)
	assert.Equal(t, a.ID, events[0].CommentID)
	assert.Equal(t, f.postID, events[0].PostID)
	assert.False(t, events[0].IsReply)

	assert.Equal(t, "bob", events[1].ActingUsername)
	assert.True(t, events[1].IsReply)
}

func TestFailedCreateEmitsNoEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTopLevel(context.Background(), f.postID, f.aliceID, "")
	require.Error(t, err)
	assert.Empty(t, f.sink.recorded())
}
