package comments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db as a comment Store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) Insert(ctx context.Context, c *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to create comment")
	}
	return nil
}

func (s *GormStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.getByID(ctx, id, false)
}

func (s *GormStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return s.getByID(ctx, id, true)
}

func (s *GormStore) getByID(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Comment, error) {
	q := s.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var c models.Comment
	if err := q.Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewError(utils.ErrNotFound.Code, "Comment not found")
		}
		return nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load comment")
	}
	return &c, nil
}

// MaxRefForPost locks the post row before reading the aggregate. Postgres
// rejects FOR UPDATE on aggregate queries, so the post row itself is the lock
// handle serializing ref allocation; this also validates post existence under
// the same lock.
func (s *GormStore) MaxRefForPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}
		return 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to lock post")
	}

	var maxRef int64
	err = s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ?", postID).
		Select("COALESCE(MAX(ref), 0)").
		Scan(&maxRef).Error
	if err != nil {
		return 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to read max ref")
	}
	return maxRef, nil
}

func (s *GormStore) ShiftRefOrder(ctx context.Context, postID uuid.UUID, ref int64, fromOrder int) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND ref = ? AND ref_order >= ?", postID, ref, fromOrder).
		UpdateColumn("ref_order", gorm.Expr("ref_order + 1")).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to shift comment positions")
	}
	return nil
}

func (s *GormStore) BumpAnswerNum(ctx context.Context, id uuid.UUID, delta int) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		UpdateColumn("answer_num", gorm.Expr("answer_num + ?", delta)).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update answer count")
	}
	return nil
}

func (s *GormStore) UpdateContent(ctx context.Context, id uuid.UUID, content string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Update("content", content).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to update comment")
	}
	return nil
}

func (s *GormStore) MarkDeleted(ctx context.Context, id uuid.UUID, marker string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "content": marker}).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to soft-delete comment")
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Comment{}).Error
	if err != nil {
		return utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to delete comment")
	}
	return nil
}

func (s *GormStore) HasReplies(ctx context.Context, parentID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_id = ?", parentID).
		Count(&count).Error
	if err != nil {
		return false, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count replies")
	}
	return count > 0, nil
}

// TopLevelByPost orders by ref: every top-level comment has ref_order 0, so
// the thread sequence number is what puts threads in creation order.
func (s *GormStore) TopLevelByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	base := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND is_deleted = ?", postID, false).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count comments")
	}

	var items []models.Comment
	err := base.
		Order("ref ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list comments")
	}
	return items, total, nil
}

func (s *GormStore) RepliesByParent(ctx context.Context, parentID uuid.UUID, offset, limit int) ([]models.Comment, int64, error) {
	base := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to count replies")
	}

	var items []models.Comment
	err := base.
		Order("ref_order ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to list replies")
	}
	return items, total, nil
}

// GormDirectory resolves members and posts straight from the primary tables.
type GormDirectory struct {
	db *gorm.DB
}

// NewGormDirectory wraps db as a Directory.
func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) MemberUsername(ctx context.Context, id uuid.UUID) (string, error) {
	var user models.User
	err := d.db.WithContext(ctx).
		Select("id", "username", "is_active").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", utils.NewError(utils.ErrNotFound.Code, "Member not found")
		}
		return "", utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load member")
	}
	if !user.IsActive {
		return "", utils.NewError(utils.ErrNotFound.Code, "Member not found")
	}
	return user.Username, nil
}

func (d *GormDirectory) PostOwner(ctx context.Context, postID uuid.UUID) (uuid.UUID, error) {
	var post models.Post
	err := d.db.WithContext(ctx).
		Select("id", "author_id").
		Where("id = ?", postID).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, utils.NewError(utils.ErrNotFound.Code, "Post not found")
		}
		return uuid.Nil, utils.WrapError(err, utils.ErrInternalServerError.Code, "Failed to load post")
	}
	return post.AuthorID, nil
}
