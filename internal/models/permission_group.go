package models

// PermissionGroup is a named bucket of users sharing the same resource
// grants. System groups are created during initialization and cannot be
// deleted, though their grants remain editable.
type PermissionGroup struct {
	BaseModel

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	IsSystem    bool   `gorm:"default:false" json:"is_system"`

	Users     []User                `gorm:"many2many:user_groups;" json:"users,omitempty"`
	Resources []ProtectableResource `gorm:"many2many:resource_permissions;" json:"resources,omitempty"`
}
