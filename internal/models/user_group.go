package models

import "time"

// UserGroup is the user/group membership join row. Membership confers
// every resource grant held by the group.
type UserGroup struct {
	UserID            string `gorm:"primaryKey;type:uuid" json:"user_id"`
	PermissionGroupID string `gorm:"primaryKey;type:uuid" json:"group_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name for GORM.
func (UserGroup) TableName() string {
	return "user_groups"
}
