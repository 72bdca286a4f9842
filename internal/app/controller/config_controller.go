package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/pkg/logger"
)

type ConfigController struct {
	configService service.ConfigService
}

func NewConfigController(configService service.ConfigService) *ConfigController {
	return &ConfigController{configService: configService}
}

type SetConfigRequest struct {
	Value string `json:"value" binding:"required"`
}

// List GET /api/v1/config
func (ctrl *ConfigController) List(c *gin.Context) {
	entries, err := ctrl.configService.List()
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": entries})
}

// Get GET /api/v1/config/:name
func (ctrl *ConfigController) Get(c *gin.Context) {
	entry, err := ctrl.configService.Get(c.Param("name"))
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "config")
		return
	}
	c.JSON(http.StatusOK, gin.H{"config": entry})
}

// Set takes effect on the next screening run.
// PUT /api/v1/config/:name
func (ctrl *ConfigController) Set(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req SetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	entry, err := ctrl.configService.Set(c.Param("name"), req.Value)
	if err != nil {
		log.Warn("Rejected config update", logger.Fields{
			"name":  c.Param("name"),
			"error": err.Error(),
		})
		apperrors.RespondWithDomainError(c, err, "config")
		return
	}

	userID, _ := middleware.GetUserID(c)
	log.Info("Config updated", logger.Fields{
		"name":    entry.Name,
		"user_id": userID,
	})
	c.JSON(http.StatusOK, gin.H{"config": entry})
}
