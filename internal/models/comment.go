package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment is a single comment on a post. Ref identifies the thread group the
// comment belongs to (an independently incrementing sequence per post, shared
// by the whole thread), and RefOrder is the comment's display position within
// that group. Both are assigned at creation and never change afterwards.
type Comment struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Content  string     `gorm:"type:text;not null" json:"content" validate:"required,min=1,max=1000"`
	PostID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_thread,priority:1" json:"post_id" validate:"required"`
	AuthorID uuid.UUID  `gorm:"type:uuid;not null;index:idx_comment_author" json:"author_id" validate:"required"`
	ParentID *uuid.UUID `gorm:"type:uuid;index:idx_comment_parent" json:"parent_id,omitempty"`

	Ref       int64 `gorm:"not null;index:idx_comment_thread,priority:2" json:"ref"`
	RefOrder  int   `gorm:"not null;default:0" json:"ref_order"`
	AnswerNum int   `gorm:"not null;default:0" json:"answer_num"`

	// IsDeleted marks a soft-deleted comment: content is replaced by a marker
	// but the row keeps its ref/ref_order slot so descendants stay positioned.
	IsDeleted bool `gorm:"not null;default:false;index" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty" validate:"-"`
	Post   Post `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"post,omitempty" validate:"-"`
}

// IsTopLevel reports whether the comment starts its thread.
func (c *Comment) IsTopLevel() bool {
	return c.ParentID == nil
}
