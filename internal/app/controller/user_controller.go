package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{userService: userService}
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password" binding:"required,min=8"`
}

type AssignRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

type CreateRoleRequest struct {
	Name        string             `json:"name" binding:"required"`
	Description string             `json:"description"`
	Permissions []model.Permission `json:"permissions"`
}

// CreateUser POST /api/v1/users
func (ctrl *UserController) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	user, err := ctrl.userService.CreateUser(service.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// ListUsers GET /api/v1/users
func (ctrl *UserController) ListUsers(c *gin.Context) {
	users, err := ctrl.userService.ListUsers()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list users", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// AssignRole POST /api/v1/users/:id/roles
func (ctrl *UserController) AssignRole(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	if err := ctrl.userService.AssignRole(userID, req.RoleID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.NotFound(c, apperrors.ResourceNotFound, "user not found")
			return
		}
		apperrors.RespondWithDomainError(c, err, "role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "role assigned"})
}

// CreateRole POST /api/v1/roles
func (ctrl *UserController) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	role, err := ctrl.userService.CreateRole(req.Name, req.Description, req.Permissions)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "role")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"role": role})
}

// ListRoles GET /api/v1/roles
func (ctrl *UserController) ListRoles(c *gin.Context) {
	roles, err := ctrl.userService.ListRoles()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to list roles", err)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles})
}
