package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission gates access to promotion operations.
type Permission string

const (
	PermissionYearsRead        Permission = "years:read"
	PermissionPromotionRead    Permission = "promotion:read"
	PermissionPromotionExecute Permission = "promotion:execute"
	PermissionPromotionUndo    Permission = "promotion:undo"
)

// AllPermissions is the full permission set granted to seeded admins.
var AllPermissions = []Permission{
	PermissionYearsRead,
	PermissionPromotionRead,
	PermissionPromotionExecute,
	PermissionPromotionUndo,
}

// Admin is a school administrator account.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminLoginRequest is the payload for admin authentication.
type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// AdminLoginResponse is returned after successful login.
type AdminLoginResponse struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}
