package domain

import (
	"time"
)

// User represents a user entity.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Bio          string    `json:"bio,omitempty"`
	ProfilePic   string    `json:"profilePic,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// UserModel is the GORM persistence model for User.
type UserModel struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	FullName     string `gorm:"size:255;not null"`
	Bio          string `gorm:"size:1024"`
	ProfilePic   string `gorm:"size:2048"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName sets the users table name.
func (UserModel) TableName() string { return "users" }

// ToDomain converts the persistence model to a domain User.
func (m *UserModel) ToDomain() *User {
	return &User{
		ID:           m.ID,
		Email:        m.Email,
		FullName:     m.FullName,
		Bio:          m.Bio,
		ProfilePic:   m.ProfilePic,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// UserToModel converts a domain User to its persistence model.
func UserToModel(u *User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Bio:          u.Bio,
		ProfilePic:   u.ProfilePic,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// SignupRequest represents a registration request.
type SignupRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Bio      string `json:"bio" binding:"required"`
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update. ProfilePic may be a
// data URL, which the service decodes and moves to blob storage.
type UpdateProfileRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Bio        string `json:"bio" binding:"required"`
	ProfilePic string `json:"profilePic" binding:"required"`
}
