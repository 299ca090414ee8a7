package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the users table row. Email is the sole login identifier;
// there is no username column. An empty password hash marks an account
// that cannot authenticate with a password.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               int64      `bun:"id,pk,autoincrement"`
	Email            string     `bun:"email,unique,notnull"`
	PasswordHash     string     `bun:"password_hash,notnull,default:''"`
	FirstName        string     `bun:"first_name,notnull,default:''"`
	LastName         string     `bun:"last_name,notnull,default:''"`
	ShortBio         string     `bun:"short_bio,notnull,default:''"`
	AboutMe          string     `bun:"about_me,type:text,notnull,default:''"`
	UserRole         string     `bun:"user_role,notnull,default:''"`
	Intake           string     `bun:"intake,notnull,default:''"`
	ProfessionalRole string     `bun:"professional_role,notnull,default:''"`
	CurrentCompany   string     `bun:"current_company,notnull,default:''"`
	IsActive         bool       `bun:"is_active,notnull,default:true"`
	IsStaff          bool       `bun:"is_staff,notnull,default:false"`
	IsSuperuser      bool       `bun:"is_superuser,notnull,default:false"`
	LastLogin        *time.Time `bun:"last_login,nullzero"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}

// Link is the links table row. Rows belong to exactly one user and are
// removed by the database when the owning user row is deleted.
type Link struct {
	bun.BaseModel `bun:"table:links,alias:l"`

	ID     int64  `bun:"id,pk,autoincrement"`
	UserID int64  `bun:"user_id,notnull"`
	Name   string `bun:"name,notnull,default:''"`
	URL    string `bun:"url,notnull"`
}
