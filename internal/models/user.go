package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the member entity. The comment core only needs existence checks,
// author identity and notification targets; account management lives outside
// this service.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Username  string    `gorm:"size:255;not null;unique" json:"username" validate:"required,min=3,max=255,alphanum"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" validate:"required,email"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
