package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationTypeCommentPost  = "comment_post"
	NotificationTypeReplyComment = "reply_comment"
)

// Notification is the delivery target for comment-created events.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	Message   string     `gorm:"size:255;not null" json:"message"`
	CommentID *uuid.UUID `gorm:"type:uuid" json:"comment_id,omitempty"`
	PostID    *uuid.UUID `gorm:"type:uuid" json:"post_id,omitempty"`
	IsRead    bool       `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
