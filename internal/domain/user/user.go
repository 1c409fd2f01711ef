package user

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email_add"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Attrs are the optional attributes accepted at creation time.
// A nil Active means the default (active).
type Attrs struct {
	Name      string
	Active    *bool
	Staff     bool
	Superuser bool
}

// Update is a partial update; nil fields are left untouched.
type Update struct {
	Email    *string
	Name     *string
	Password *string
	Active   *bool
	Staff    *bool
}

// Profile is the "current user" representation. The password is write-only
// and has no place here.
type Profile struct {
	Email string `json:"email_add"`
	Name  string `json:"name"`
}

func (u User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name}
}

// NormalizeEmail lower-cases the domain part of an address. The local part
// is kept as given. Applying it twice is a no-op.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Password is a password as submitted. Surrounding whitespace is dropped on
// decode, so signup, profile updates and login all see the same value and
// the length rules apply to what is actually hashed.
type Password string

func (p *Password) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = Password(strings.TrimSpace(raw))
	return nil
}

// StringPtr returns nil for an absent password.
func (p *Password) StringPtr() *string {
	if p == nil {
		return nil
	}
	s := string(*p)
	return &s
}

type CreateUserRequest struct {
	Email    string   `json:"email_add" binding:"required,email,max=255"`
	Password Password `json:"password" binding:"required,notblank,min=5"`
	Name     string `json:"name" binding:"omitempty,max=255"`
}

type TokenRequest struct {
	Email    string   `json:"email_add" binding:"required"`
	Password Password `json:"password"`
}

// UpdateProfileRequest backs PATCH; every field is optional.
type UpdateProfileRequest struct {
	Email    *string   `json:"email_add" binding:"omitempty,email,max=255"`
	Password *Password `json:"password" binding:"omitempty,notblank,min=5"`
	Name     *string   `json:"name" binding:"omitempty,max=255"`
}

// ReplaceProfileRequest backs PUT, which requires the same fields as signup.
type ReplaceProfileRequest struct {
	Email    string   `json:"email_add" binding:"required,email,max=255"`
	Password Password `json:"password" binding:"required,notblank,min=5"`
	Name     string `json:"name" binding:"omitempty,max=255"`
}

// AdminUpdateRequest is what an operator may change on another account.
type AdminUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
	IsStaff  *bool   `json:"is_staff"`
}
