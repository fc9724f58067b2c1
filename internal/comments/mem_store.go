package comments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

// MemStore is an in-memory Store used in tests and local development. One
// mutex guards the whole store, so a transaction is simply the lock held for
// the duration of fn with a snapshot to roll back to.
type MemStore struct {
	mu       sync.Mutex
	posts    map[uuid.UUID]struct{}
	comments map[uuid.UUID]*models.Comment
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		posts:    make(map[uuid.UUID]struct{}),
		comments: make(map[uuid.UUID]*models.Comment),
	}
}

// AddPost registers a post id so ref allocation can verify post existence.
func (m *MemStore) AddPost(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[id] = struct{}{}
}

func (m *MemStore) snapshot() map[uuid.UUID]*models.Comment {
	out := make(map[uuid.UUID]*models.Comment, len(m.comments))
	for id, c := range m.comments {
		cp := *c
		out[id] = &cp
	}
	return out
}

func (m *MemStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.snapshot()
	if err := fn(&memTx{m: m}); err != nil {
		m.comments = before
		return err
	}
	return nil
}

func (m *MemStore) Insert(ctx context.Context, c *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(c)
}

func (m *MemStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByID(id)
}

func (m *MemStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return m.GetByID(ctx, id)
}

func (m *MemStore) MaxRefForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxRefForPost(postID)
}

func (m *MemStore) ShiftRefOrder(ctx context.Context, postID uuid.UUID, ref int64, fromOrder int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shiftRefOrder(postID, ref, fromOrder)
}

func (m *MemStore) BumpAnswerNum(ctx context.Context, id uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bumpAnswerNum(id, delta)
}

func (m *MemStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateContent(id, content)
}

func (m *MemStore) MarkDeleted(ctx context.Context, id uuid.UUID, marker string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markDeleted(id, marker)
}

func (m *MemStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.remove(id)
}

func (m *MemStore) HasReplies(ctx context.Context, parentID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasReplies(parentID), nil
}

func (m *MemStore) TopLevelByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.topLevelByPost(postID, offset, limit)
}

func (m *MemStore) RepliesByParent(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repliesByParent(parentID, offset, limit)
}

// memTx is the transactional view handed to InTx callbacks. The enclosing
// InTx already holds the store lock, so every call goes straight to the
// unsynchronized implementations.
type memTx struct {
	m *MemStore
}

func (t *memTx) InTx(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memTx) Insert(ctx context.Context, c *models.Comment) error {
	return t.m.insert(c)
}

func (t *memTx) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return t.m.getByID(id)
}

func (t *memTx) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return t.m.getByID(id)
}

func (t *memTx) MaxRefForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	return t.m.maxRefForPost(postID)
}

func (t *memTx) ShiftRefOrder(ctx context.Context, postID uuid.UUID, ref int64, fromOrder int) error {
	return t.m.shiftRefOrder(postID, ref, fromOrder)
}

func (t *memTx) BumpAnswerNum(ctx context.Context, id uuid.UUID, delta int) error {
	return t.m.bumpAnswerNum(id, delta)
}

func (t *memTx) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	return t.m.updateContent(id, content)
}

func (t *memTx) MarkDeleted(ctx context.Context, id uuid.UUID, marker string) error {
	return t.m.markDeleted(id, marker)
}

func (t *memTx) Delete(ctx context.Context, id uuid.UUID) error {
	return t.m.remove(id)
}

func (t *memTx) HasReplies(ctx context.Context, parentID uuid.UUID) (bool, error) {
	return t.m.hasReplies(parentID), nil
}

func (t *memTx) TopLevelByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	return t.m.topLevelByPost(postID, offset, limit)
}

func (t *memTx) RepliesByParent(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	return t.m.repliesByParent(parentID, offset, limit)
}

func (m *MemStore) insert(c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.comments[c.ID] = &cp
	return nil
}

func (m *MemStore) getByID(id uuid.UUID) (*models.Comment, error) {
	c, ok := m.comments[id]
	if !ok {
		return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}
	cp := *c
	return &cp, nil
}

func (m *MemStore) maxRefForPost(postID uuid.UUID) (int64, error) {
	if _, ok := m.posts[postID]; !ok {
		return 0, utils.NewError(utils.ErrNotFound.Code, "Post not found")
	}
	var maxRef int64
	for _, c := range m.comments {
		if c.PostID == postID && c.Ref > maxRef {
			maxRef = c.Ref
		}
	}
	return maxRef, nil
}

func (m *MemStore) shiftRefOrder(postID uuid.UUID, ref int64, fromOrder int) error {
	for _, c := range m.comments {
		if c.PostID == postID && c.Ref == ref && c.RefOrder >= fromOrder {
			c.RefOrder++
		}
	}
	return nil
}

func (m *MemStore) bumpAnswerNum(id uuid.UUID, delta int) error {
	c, ok := m.comments[id]
	if !ok {
		return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}
	c.AnswerNum += delta
	return nil
}

func (m *MemStore) updateContent(id uuid.UUID, content string) error {
	c, ok := m.comments[id]
	if !ok {
		return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}
	c.Content = content
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MemStore) markDeleted(id uuid.UUID, marker string) error {
	c, ok := m.comments[id]
	if !ok {
		return utils.NewError(utils.ErrNotFound.Code, "Comment not found")
	}
	c.IsDeleted = true
	c.Content = marker
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MemStore) remove(id uuid.UUID) error {
	delete(m.comments, id)
	return nil
}

func (m *MemStore) hasReplies(parentID uuid.UUID) bool {
	for _, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == parentID {
			return true
		}
	}
	return false
}

func (m *MemStore) topLevelByPost(postID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	var all []models.Comment
	for _, c := range m.comments {
		if c.PostID == postID && c.ParentID == nil && !c.IsDeleted {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Ref < all[j].Ref })
	return paginate(all, offset, limit)
}

func (m *MemStore) repliesByParent(parentID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	var all []models.Comment
	for _, c := range m.comments {
		if c.ParentID != nil && *c.ParentID == parentID && !c.IsDeleted {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RefOrder < all[j].RefOrder })
	return paginate(all, offset, limit)
}

func paginate(all []models.Comment, offset, limit int) ([]models.Comment, int64, error) {
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// MemDirectory is an in-memory Directory counterpart to MemStore.
type MemDirectory struct {
	mu     sync.Mutex
	users  map[uuid.UUID]string
	owners map[uuid.UUID]uuid.UUID
}

// NewMemDirectory returns an empty MemDirectory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{
		users:  make(map[uuid.UUID]string),
		owners: make(map[uuid.UUID]uuid.UUID),
	}
}

// AddMember registers a member.
func (d *MemDirectory) AddMember(id uuid.UUID, username string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[id] = username
}

// AddPost registers a post and its owner.
func (d *MemDirectory) AddPost(postID, ownerID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.owners[postID] = ownerID
}

func (d *MemDirectory) MemberUsername(ctx context.Context, id uuid.UUID) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	username, ok := d.users[id]
	if !ok {
		return "", utils.NewError(utils.ErrNotFound.Code, "Member not found")
	}
	return username, nil
}

func (d *MemDirectory) PostOwner(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ownerID, ok := d.owners[postID]
	if !ok {
		return uuid.Nil, utils.NewError(utils.ErrNotFound.Code, "Post not found")
	}
	return ownerID, nil
}
