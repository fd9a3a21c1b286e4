package models

import (
	"time"

	"github.com/gofrs/uuid"
)

type GlobalRole string

const (
	RoleAdmin  GlobalRole = "ADMIN"
	RoleMember GlobalRole = "MEMBER"
	RoleViewer GlobalRole = "VIEWER"
)

type User struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	Role         GlobalRole `json:"role" gorm:"not null;default:'MEMBER'"`
	CreatedAt    time.Time  `json:"created_at"`

	Memberships []ProjectMember `json:"memberships,omitempty" gorm:"foreignKey:UserID"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Token is a single-use refresh token. Rotated on every refresh.
type Token struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	RefreshToken uuid.UUID `json:"refresh_token" gorm:"type:uuid;not null;uniqueIndex"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}
