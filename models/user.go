package models

import (
	"time"
)

// Role IDs as seeded in the roles table.
const (
	RoleAthlete    = 1
	RoleCoach      = 2
	RoleAdmin      = 3
	RoleSuperadmin = 4
)

type User struct {
	UserID      uint       `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	RoleID      int        `gorm:"column:role_id" json:"role_id"`
	DisplayName *string    `gorm:"column:display_name" json:"display_name,omitempty"`
	AvatarURL   *string    `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Bio         *string    `gorm:"column:bio" json:"bio,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// FullName returns the user's display name, falling back to first/last name.
func (u *User) FullName() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.FirstName + " " + u.LastName
}

// IsCoach reports whether the user holds the coach role.
func (u *User) IsCoach() bool {
	return u.RoleID == RoleCoach
}

// IsStaff reports whether the user holds an admin or superadmin role.
func (u *User) IsStaff() bool {
	return u.RoleID == RoleAdmin || u.RoleID == RoleSuperadmin
}
