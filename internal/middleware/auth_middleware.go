package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/pkg/logger"
	"github.com/ikkim/screening-backend/pkg/util"
)

// Context keys for user information
const (
	UserIDKey   = "user_id"
	UsernameKey = "username"
	ClaimsKey   = "claims"
)

type AuthMiddleware struct {
	authService  service.AuthService
	authzService service.AuthorizationService
}

func NewAuthMiddleware(authService service.AuthService, authzService service.AuthorizationService) *AuthMiddleware {
	return &AuthMiddleware{
		authService:  authService,
		authzService: authzService,
	}
}

// Authenticate validates the access token (required). The token is read from
// the Authorization header, or from the token query parameter for websocket
// upgrades that cannot set headers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		var token string
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				log.Warn("Invalid authorization header format")
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "authorization header must be 'Bearer <token>'")
				c.Abort()
				return
			}
			token = parts[1]
		} else {
			token = c.Query("token")
			if token == "" {
				log.Warn("Missing authorization header")
				apperrors.Unauthorized(c, "authentication required")
				c.Abort()
				return
			}
		}

		claims, err := m.authService.ValidateAccessToken(token)
		if err != nil {
			log.Warn("Token validation failed", logger.Fields{
				"error": err.Error(),
			})

			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "token has expired")
			case errors.Is(err, service.ErrTokenRevoked):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "token has been revoked")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "invalid token")
			}
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UsernameKey, claims.Username)
		c.Set(ClaimsKey, claims)

		log.Debug("User authenticated successfully", logger.Fields{
			"user_id": claims.UserID,
		})

		c.Next()
	}
}

// RequirePermission allows the request through only when the authenticated
// user holds permission through one of their roles.
func (m *AuthMiddleware) RequirePermission(permission model.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		userID, ok := GetUserID(c)
		if !ok {
			apperrors.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		allowed, err := m.authzService.HasPermission(userID, permission)
		if err != nil {
			log.Error("Permission lookup failed", err, logger.Fields{
				"user_id":    userID,
				"permission": permission,
			})
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}
		if !allowed {
			log.Warn("Insufficient permissions", logger.Fields{
				"user_id":    userID,
				"permission": permission,
			})
			apperrors.Forbidden(c, "missing permission "+string(permission))
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetClaims extracts the validated token claims from context
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	typed, ok := claims.(*util.Claims)
	return typed, ok
}
