package models

// Resource types. Pages and components differ only in how callers derive
// their keys; resolution treats them identically.
const (
	ResourceTypePage      = "page"
	ResourceTypeComponent = "component"
)

// ProtectableResource is a named, independently access-controllable unit of
// the application: a page or a UI component. Rows are created once by
// registry sync and thereafter edited only by administrators; a resource
// with no group attached is open to every active user.
type ProtectableResource struct {
	BaseModel

	// ResourceKey is the stable cross-reference between code and store.
	// It must never be reused for a different resource.
	ResourceKey string `gorm:"uniqueIndex;not null" json:"resource_key"`
	Type        string `gorm:"type:varchar(16);not null;index" json:"type"`

	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// ParentKey links nested pages for navigation; a lookup relation only.
	ParentKey *string `gorm:"index" json:"parent_key"`
	// Path maps an incoming request path to this resource for page guards.
	Path *string `gorm:"index" json:"path"`

	SortOrder int `gorm:"default:0" json:"sort_order"`
	// IsActive has no column default for the same reason as User.IsActive:
	// an explicit false must survive the insert. Registry sync always sets it.
	IsActive      bool `gorm:"not null" json:"is_active"`
	RequiredLevel int  `gorm:"default:1" json:"required_level"`

	Groups []PermissionGroup `gorm:"many2many:resource_permissions;" json:"groups,omitempty"`
}

// TableName overrides the default table name for GORM.
func (ProtectableResource) TableName() string {
	return "protectable_resources"
}
