package user

import (
	"strings"
	"time"
)

// Role classification for an account. Stored as plain strings, checked
// in the service layer.
const (
	RoleStudent = "student"
	RoleStaff   = "staff"
	RoleAlumni  = "alumni"
)

// ValidRole reports whether role is one of the allowed classifications.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleStaff, RoleAlumni:
		return true
	}
	return false
}

// User is the domain model for an account. Serialization to the wire
// shape happens in Serialize; the password hash never leaves the
// service layer.
type User struct {
	ID               int64
	Email            string
	PasswordHash     string
	FirstName        string
	LastName         string
	ShortBio         string
	AboutMe          string
	UserRole         string
	Intake           string
	ProfessionalRole string
	CurrentCompany   string
	IsActive         bool
	IsStaff          bool
	IsSuperuser      bool
	LastLogin        *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName returns the display name, last name first.
func (u *User) FullName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// HasUsablePassword reports whether the account can authenticate with a
// password. Accounts created without one store an empty hash.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}

// NormalizeEmail lower-cases the domain part of an address. The local
// part is left untouched; normalizing twice yields the same result.
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}
