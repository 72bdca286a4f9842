package repository

import (
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/pkg/logger"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByUsername(username string) (*model.User, error)
	List() ([]model.User, error)
	AssignRole(userID, roleID uint) error
	Permissions(userID uint) ([]string, error)

	CreateRole(role *model.Role) error
	FindRoleByID(id uint) (*model.Role, error)
	ListRoles() ([]model.Role, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", logger.Fields{
		"username": user.Username,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, logger.Fields{
			"username": user.Username,
		})
		return err
	}

	logger.Debug("User created in database", logger.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	logger.Debug("Finding user by ID in database", logger.Fields{
		"user_id": id,
	})

	var user model.User
	if err := r.db.Preload("Roles").First(&user, id).Error; err != nil {
		logger.Error("Failed to find user by ID in database", err, logger.Fields{
			"user_id": id,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*model.User, error) {
	logger.Debug("Finding user by username in database", logger.Fields{
		"username": username,
	})

	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		logger.Error("Failed to find user by username in database", err, logger.Fields{
			"username": username,
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List() ([]model.User, error) {
	var users []model.User
	if err := r.db.Preload("Roles").Order("id ASC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) AssignRole(userID, roleID uint) error {
	logger.Debug("Assigning role to user", logger.Fields{
		"user_id": userID,
		"role_id": roleID,
	})

	user := model.User{ID: userID}
	role := model.Role{ID: roleID}
	if err := r.db.Model(&user).Association("Roles").Append(&role); err != nil {
		logger.Error("Failed to assign role to user", err, logger.Fields{
			"user_id": userID,
			"role_id": roleID,
		})
		return err
	}
	return nil
}

// Permissions returns the distinct permissions granted through any of the user's roles.
func (r *userRepository) Permissions(userID uint) ([]string, error) {
	var permissions []string
	err := r.db.Table("role_permissions").
		Distinct("role_permissions.permission").
		Joins("JOIN user_roles ON user_roles.role_id = role_permissions.role_id").
		Where("user_roles.user_id = ?", userID).
		Order("role_permissions.permission").
		Pluck("role_permissions.permission", &permissions).Error
	if err != nil {
		logger.Error("Failed to load user permissions", err, logger.Fields{
			"user_id": userID,
		})
		return nil, err
	}
	return permissions, nil
}

func (r *userRepository) CreateRole(role *model.Role) error {
	logger.Debug("Creating role in database", logger.Fields{
		"name": role.Name,
	})

	if err := r.db.Create(role).Error; err != nil {
		logger.Error("Failed to create role in database", err, logger.Fields{
			"name": role.Name,
		})
		return err
	}
	return nil
}

func (r *userRepository) FindRoleByID(id uint) (*model.Role, error) {
	var role model.Role
	if err := r.db.Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) ListRoles() ([]model.Role, error) {
	var roles []model.Role
	if err := r.db.Preload("Permissions").Order("name ASC").Find(&roles).Error; err != nil {
		logger.Error("Failed to list roles", err)
		return nil, err
	}
	return roles, nil
}
