package model

import "time"

type Permission string // permission kind checked by the authorization service

const (
	PermCreatePerson    Permission = "create_person"
	PermDeletePerson    Permission = "delete_person"
	PermViewPerson      Permission = "view_person"
	PermManageBlacklist Permission = "manage_blacklist"
	PermViewBlacklist   Permission = "view_blacklist"
	PermViewMatches     Permission = "view_matches"
	PermManageConfig    Permission = "manage_config"
	PermManageUsers     Permission = "manage_users"
)

// AllPermissions is granted to the bootstrap admin role.
var AllPermissions = []Permission{
	PermCreatePerson,
	PermDeletePerson,
	PermViewPerson,
	PermManageBlacklist,
	PermViewBlacklist,
	PermViewMatches,
	PermManageConfig,
	PermManageUsers,
}

const AdminRoleName = "admin"

type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"type:varchar(100)" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

func (User) TableName() string {
	return "users"
}

type Role struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	Permissions []RolePermission `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

type RolePermission struct {
	RoleID     uint       `gorm:"primaryKey;autoIncrement:false" json:"role_id"`
	Permission Permission `gorm:"primaryKey;type:varchar(50)" json:"permission"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}
