package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a platform account. Authentication lives in an external
// identity layer; the access-control engine only consumes the identifier,
// the active flag and the super-user flag.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// IsSuperUser bypasses every resource-level access check.
	IsSuperUser bool `gorm:"default:false" json:"is_super_user"`

	// IsActive carries no column default: gorm omits zero-valued fields
	// with defaults on insert, which would silently turn an explicit
	// false into true. Creation paths must set it.
	IsActive bool `gorm:"not null" json:"is_active"`

	Groups []PermissionGroup `gorm:"many2many:user_groups;" json:"groups,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
