package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the caller of a request. The zero value is an anonymous caller.
type Identity struct {
	UserID int
	Email  string
	Staff  bool
}

func (i Identity) Authenticated() bool {
	return i.UserID > 0
}

func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Email: u.Email, Staff: u.IsStaff}
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateMeRequest struct {
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
	Password *string `json:"password" validate:"omitempty,min=8,max=128"`
}

type AuthResponse struct {
	Access    string `json:"access"`
	Refresh   string `json:"refresh"`
	User      User   `json:"user"`
	ExpiresIn int    `json:"expires_in"`
}

type Session struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	RefreshToken string    `json:"-"`
	UserAgent    string    `json:"user_agent"`
	IP           string    `json:"ip"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
