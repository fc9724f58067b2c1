package comments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopLevelRefSequence(t *testing.T) {
	f := newFixture(t)

	first := f.mustCreate(t, f.aliceID, "first thread")
	second := f.mustCreate(t, f.bobID, "second thread")
	third := f.mustCreate(t, f.aliceID, "third thread")

	assert.Equal(t, int64(1), first.Ref)
	assert.Equal(t, int64(2), second.Ref)
	assert.Equal(t, int64(3), third.Ref)

	assert.Equal(t, 0, first.RefOrder, "top-level comments start their group")
	assert.Equal(t, 0, second.RefOrder)
	assert.Equal(t, 0, third.RefOrder)
}

func TestRefSequencesAreIsolatedPerPost(t *testing.T) {
	f := newFixture(t)

	otherPost := uuid.New()
	f.dir.AddPost(otherPost, f.ownerID)
	f.store.AddPost(otherPost)

	f.mustCreate(t, f.aliceID, "post one, thread one")
	f.mustCreate(t, f.aliceID, "post one, thread two")

	c, err := f.svc.CreateTopLevel(context.Background(), otherPost, f.bobID, "post two, thread one")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Ref, "each post counts threads independently")
}

func TestReplyInheritsRefAndSlotsAfterParent(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")

	assert.Equal(t, a.Ref, b.Ref)
	assert.Equal(t, a.RefOrder+1, b.RefOrder)
	assert.Equal(t, a.ID, *b.ParentID)
	assert.Equal(t, a.PostID, b.PostID)
}

func TestNewerReplyShiftsOlderSiblingDown(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")
	c := f.mustReply(t, a.ID, f.aliceID, "C")

	// C takes the slot directly after A; B moves down one.
	assert.Equal(t, 1, c.RefOrder)
	assert.Equal(t, 2, f.reload(t, b.ID).RefOrder)
	assert.Equal(t, 0, f.reload(t, a.ID).RefOrder)

	assert.Equal(t, 2, f.reload(t, a.ID).AnswerNum, "both replies count toward the immediate parent")
}

func TestReplyToReplyNestsDirectlyBelowIt(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	b := f.mustReply(t, a.ID, f.bobID, "B")
	d := f.mustReply(t, b.ID, f.aliceID, "D")

	assert.Equal(t, a.Ref, d.Ref)
	assert.Equal(t, 2, d.RefOrder)
	assert.Equal(t, 1, f.reload(t, b.ID).AnswerNum)
	assert.Equal(t, 1, f.reload(t, a.ID).AnswerNum, "answer counter never bubbles past the immediate parent")
}

func TestShiftOnlyTouchesOwnThreadGroup(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	other := f.mustCreate(t, f.bobID, "other thread")
	otherReply := f.mustReply(t, other.ID, f.aliceID, "other reply")

	f.mustReply(t, a.ID, f.bobID, "reply to A")

	assert.Equal(t, 0, f.reload(t, other.ID).RefOrder)
	assert.Equal(t, 1, f.reload(t, otherReply.ID).RefOrder)
}

func TestCreateTopLevelUnknownPost(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateTopLevel(context.Background(), uuid.New(), f.aliceID, "hello")
	require.Error(t, err)
	assert.Equal(t, utils.ErrNotFound.Code, utils.ErrorCode(err))
}

func TestInTxRollbackDiscardsWrites(t *testing.T) {
	f := newFixture(t)

	a := f.mustCreate(t, f.aliceID, "A")
	boom := utils.NewError(utils.ErrInternalServerError.Code, "boom")

	err := f.store.InTx(context.Background(), func(tx Store) error {
		if err := tx.ShiftRefOrder(context.Background(), f.postID, a.Ref, 0); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.Equal(t, 0, f.reload(t, a.ID).RefOrder, "rolled-back shift must not stick")
}
