package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleParent is a parent account (catalogue access gated by premium)
	RoleParent UserRole = "parent"
	// RoleTeacher is a teacher account (catalogue access gated by verification)
	RoleTeacher UserRole = "teacher"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"password_hash,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	IsPremium     bool       `bun:"is_premium" json:"is_premium"`
	IsVerified    bool       `bun:"is_verified" json:"is_verified"`
	IsAdmin       bool       `bun:"is_admin" json:"is_admin"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Summary returns the caller facing projection of the account. It never
// carries the password hash.
func (u *User) Summary() UserSummary {
	s := UserSummary{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Role:       u.Role,
		IsPremium:  u.IsPremium,
		IsVerified: u.IsVerified,
		IsAdmin:    u.IsAdmin,
	}
	if u.CreatedAt != nil {
		s.CreatedAt = *u.CreatedAt
	}
	return s
}

// UserSummary is what the surrounding system gets back from auth operations.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       UserRole  `json:"user_type"`
	IsPremium  bool      `json:"is_premium"`
	IsVerified bool      `json:"is_verified"`
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Sheet is a pedagogical sheet record. The core never serves sheet content;
// the model exists so visibility predicates have a concrete shape to match
// and to translate into store queries.
type Sheet struct {
	bun.BaseModel `bun:"table:pedagogical_sheets,alias:sheet"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string     `bun:"title,notnull" json:"title,omitempty"`
	Description   string     `bun:"description" json:"description,omitempty"`
	Level         string     `bun:"level,notnull" json:"level,omitempty"`
	Subject       string     `bun:"subject,notnull" json:"subject,omitempty"`
	IsPremium     bool       `bun:"is_premium" json:"is_premium"`
	IsTeacherOnly bool       `bun:"is_teacher_only" json:"is_teacher_only"`
	FileURL       string     `bun:"file_url" json:"file_url,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleParent
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
}
