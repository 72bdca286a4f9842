package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/ikkim/screening-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrUnknownPermission = errors.New("unknown permission")

type CreateUserInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

// UserService manages the RBAC tables behind AuthorizationService.
type UserService interface {
	CreateUser(input CreateUserInput) (*model.User, error)
	ListUsers() ([]model.User, error)
	AssignRole(userID, roleID uint) error
	CreateRole(name, description string, permissions []model.Permission) (*model.Role, error)
	ListRoles() ([]model.Role, error)
}

type userService struct {
	userRepo repository.UserRepository
	authz    AuthorizationService
}

func NewUserService(userRepo repository.UserRepository, authz AuthorizationService) UserService {
	return &userService{userRepo: userRepo, authz: authz}
}

func (s *userService) CreateUser(input CreateUserInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, formatViolation("username is required")
	}

	hash, err := util.HashPassword(input.Password)
	if errors.Is(err, util.ErrPasswordPolicy) {
		return nil, formatViolation(err.Error())
	}
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        strings.TrimSpace(input.Email),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	logger.Info("User created", logger.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (s *userService) ListUsers() ([]model.User, error) {
	return s.userRepo.List()
}

func (s *userService) AssignRole(userID, roleID uint) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if _, err := s.userRepo.FindRoleByID(roleID); err != nil {
		return notFound(err, "role", roleID)
	}

	if err := s.userRepo.AssignRole(userID, roleID); err != nil {
		return err
	}
	s.authz.Invalidate(userID)

	logger.Info("Role assigned", logger.Fields{
		"user_id": userID,
		"role_id": roleID,
	})
	return nil
}

func (s *userService) CreateRole(name, description string, permissions []model.Permission) (*model.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, formatViolation("role name is required")
	}

	known := make(map[model.Permission]bool, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		known[p] = true
	}

	role := &model.Role{Name: name, Description: description}
	seen := make(map[model.Permission]bool, len(permissions))
	for _, p := range permissions {
		if !known[p] {
			return nil, fmt.Errorf("%w: %w %q", apperrors.ErrFormatViolation, ErrUnknownPermission, p)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		role.Permissions = append(role.Permissions, model.RolePermission{Permission: p})
	}

	if err := s.userRepo.CreateRole(role); err != nil {
		return nil, err
	}

	logger.Info("Role created", logger.Fields{
		"role_id":     role.ID,
		"name":        role.Name,
		"permissions": len(role.Permissions),
	})
	return role, nil
}

func (s *userService) ListRoles() ([]model.Role, error) {
	return s.userRepo.ListRoles()
}
