package models

import (
	"time"

	"github.com/google/uuid"
)

// Post anchors comment threads. Post CRUD itself is out of scope here; the
// comment core reads posts for existence checks and owner notification.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null;index:idx_post_author" json:"author_id" validate:"required"`
	Content   string    `gorm:"type:text;not null" json:"content" validate:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Author User `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"author,omitempty" validate:"-"`
}
