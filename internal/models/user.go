package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Role values a profile can hold. Role is the sole authorization input for
// every guarded operation; it is read from the profile row, never from tokens.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// User represents a forum profile linked to the school's identity provider
type User struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	FullName    string `json:"full_name"`
	Email       string `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Role        string `json:"role" gorm:"size:20;default:student;index"`
	Password    string `json:"-"`                                         // Store hashed password, ignore for JSON serialization
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"` // Link to Firebase User UID
}

// IsModerator reports whether the user may take part in moderation.
func (u *User) IsModerator() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}

// CreateUserRequest defines the request body for registering with a Firebase UID
type CreateUserRequest struct {
	FullName    string `json:"full_name" validate:"required,min=2,max=50"`
	Email       string `json:"email" validate:"required,email"`
	FirebaseUID string `json:"firebase_uid" validate:"required"` // Firebase UID will be provided by the client after Firebase Auth
}

// CreateLocalUserRequest defines the request body for local email/password signup
type CreateLocalUserRequest struct {
	FullName string `json:"full_name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// UpdateUserRequest defines the request body for updating a profile
type UpdateUserRequest struct {
	FullName string `json:"full_name,omitempty" validate:"omitempty,min=2,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

// UpdateRoleRequest defines the admin-only request body for changing a user's role
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student teacher admin"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
