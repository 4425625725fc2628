package models

import "time"

// ResourcePermission is the resource/group join row. The presence of at
// least one row makes the resource restricted; its absence leaves the
// resource open. The composite primary key enforces pair uniqueness.
type ResourcePermission struct {
	ProtectableResourceID string `gorm:"primaryKey;type:uuid" json:"resource_id"`
	PermissionGroupID     string `gorm:"primaryKey;type:uuid" json:"group_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName overrides the default table name for GORM.
func (ResourcePermission) TableName() string {
	return "resource_permissions"
}
