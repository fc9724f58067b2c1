package comments

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/stretchr/testify/require"
)

type sinkRecorder struct {
	mu     sync.Mutex
	events []CommentCreatedEvent
}

func (r *sinkRecorder) CommentCreated(ev CommentCreatedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *sinkRecorder) recorded() []CommentCreatedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CommentCreatedEvent, len(r.events))
	copy(out, r.events)
	return out
}

type fixture struct {
	svc   *Service
	store *MemStore
	dir   *MemDirectory
	sink  *sinkRecorder

	postID  uuid.UUID
	ownerID uuid.UUID
	aliceID uuid.UUID
	bobID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:   NewMemStore(),
		dir:     NewMemDirectory(),
		sink:    &sinkRecorder{},
		postID:  uuid.New(),
		ownerID: uuid.New(),
		aliceID: uuid.New(),
		bobID:   uuid.New(),
	}
	f.dir.AddMember(f.ownerID, "owner")
	f.dir.AddMember(f.aliceID, "alice")
	f.dir.AddMember(f.bobID, "bob")
	f.dir.AddPost(f.postID, f.ownerID)
	f.store.AddPost(f.postID)

	f.svc = NewService(f.store, f.dir, f.sink, nil)
	return f
}

func (f *fixture) mustCreate(t *testing.T, authorID uuid.UUID, content string) *models.Comment {
	t.Helper()
	c, err := f.svc.CreateTopLevel(context.Background(), f.postID, authorID, content)
	require.NoError(t, err)
	return c
}

func (f *fixture) mustReply(t *testing.T, parentID, authorID uuid.UUID, content string) *models.Comment {
	t.Helper()
	c, err := f.svc.CreateReply(context.Background(), parentID, authorID, content)
	require.NoError(t, err)
	return c
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.Comment {
	t.Helper()
	c, err := f.store.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}
