package service

import (
	"context"
	"time"

	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/pkg/logger"
)

// PermissionCache stores a user's resolved permission set.
type PermissionCache interface {
	Get(ctx context.Context, userID uint) ([]string, bool, error)
	Set(ctx context.Context, userID uint, permissions []string) error
	Invalidate(ctx context.Context, userID uint) error
}

// AuthorizationService answers RBAC questions for the HTTP layer. The
// registries and the screening engine never call it.
type AuthorizationService interface {
	HasPermission(userID uint, permission model.Permission) (bool, error)
	Permissions(userID uint) ([]string, error)
	Invalidate(userID uint)
}

type authorizationService struct {
	userRepo repository.UserRepository
	cache    PermissionCache
}

// NewAuthorizationService builds the service. cache may be nil.
func NewAuthorizationService(userRepo repository.UserRepository, cache PermissionCache) AuthorizationService {
	return &authorizationService{userRepo: userRepo, cache: cache}
}

func (s *authorizationService) HasPermission(userID uint, permission model.Permission) (bool, error) {
	permissions, err := s.Permissions(userID)
	if err != nil {
		return false, err
	}
	for _, p := range permissions {
		if p == string(permission) {
			return true, nil
		}
	}
	return false, nil
}

// Permissions reads through the cache. Cache failures fall back to the database.
func (s *authorizationService) Permissions(userID uint) ([]string, error) {
	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			logger.Warn("Permission cache read failed", logger.Fields{
				"user_id": userID,
				"error":   err.Error(),
			})
		} else if ok {
			return cached, nil
		}
	}

	permissions, err := s.userRepo.Permissions(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := s.cache.Set(ctx, userID, permissions); err != nil {
			logger.Warn("Permission cache write failed", logger.Fields{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return permissions, nil
}

func (s *authorizationService) Invalidate(userID uint) {
	if s.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		logger.Warn("Permission cache invalidation failed", logger.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
