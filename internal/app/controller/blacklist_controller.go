package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/pkg/logger"
)

type BlacklistController struct {
	blacklistService service.BlacklistService
	matchService     service.MatchService
}

func NewBlacklistController(blacklistService service.BlacklistService, matchService service.MatchService) *BlacklistController {
	return &BlacklistController{
		blacklistService: blacklistService,
		matchService:     matchService,
	}
}

type CreateBlacklistEntryRequest struct {
	ShortName   string `json:"short_name" binding:"required"`
	Description string `json:"description"`
}

type CreateBlacklistedPersonRequest struct {
	Type                       model.PersonKind        `json:"type" binding:"required"`
	OfficialRegistrationNumber string                  `json:"official_registration_number" binding:"required"`
	Natural                    *NaturalDetailRequest   `json:"natural_detail"`
	Juridical                  *JuridicalDetailRequest `json:"juridical_detail"`
	Attributes                 map[string]string       `json:"attributes"`
}

type DeleteBlacklistedPersonRequest struct {
	OfficialDeletionNumber string `json:"official_deletion_number"`
}

type SetAttributeRequest struct {
	Value string `json:"value"`
}

// CreateEntry POST /api/v1/blacklists
func (ctrl *BlacklistController) CreateEntry(c *gin.Context) {
	var req CreateBlacklistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	entry, err := ctrl.blacklistService.CreateBlacklistEntry(req.ShortName, req.Description)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklist")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"blacklist": entry})
}

// ListEntries GET /api/v1/blacklists
func (ctrl *BlacklistController) ListEntries(c *gin.Context) {
	entries, err := ctrl.blacklistService.ListBlacklistEntries()
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklists": entries})
}

// GetEntry GET /api/v1/blacklists/:id
func (ctrl *BlacklistController) GetEntry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entry, err := ctrl.blacklistService.GetBlacklistEntry(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklist")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklist": entry})
}

// CreatePerson lists a person on a blacklist and screens their natural detail
// against the persons registry.
// POST /api/v1/blacklists/:id/persons
func (ctrl *BlacklistController) CreatePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req CreateBlacklistedPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	person, matches, err := ctrl.blacklistService.CreateBlacklistedPerson(entryID, service.CreateBlacklistedPersonInput{
		Kind:                       req.Type,
		OfficialRegistrationNumber: req.OfficialRegistrationNumber,
		Natural:                    req.Natural.input(),
		Juridical:                  req.Juridical.input(),
		Attributes:                 req.Attributes,
	})
	if err != nil {
		log.Warn("Failed to create blacklisted person", logger.Fields{
			"blacklist_entry_id": entryID,
			"error":              err.Error(),
		})
		apperrors.RespondWithDomainError(c, err, "blacklisted person")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"blacklisted_person": person,
		"matches":            matches,
	})
}

// ListPersons GET /api/v1/blacklists/:id/persons?include_deleted=&skip=&limit=
func (ctrl *BlacklistController) ListPersons(c *gin.Context) {
	entryID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}
	includeDeleted, err := queryBool(c, "include_deleted")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "include_deleted must be a boolean")
		return
	}

	persons, total, err := ctrl.blacklistService.ListBlacklistedPersons(entryID, includeDeleted != nil && *includeDeleted, skip, limit)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklisted person")
		return
	}

	c.JSON(http.StatusOK, Page{Items: persons, Total: total, Skip: skip, Limit: effectiveLimit(limit)})
}

// GetPerson GET /api/v1/blacklisted-persons/:id
func (ctrl *BlacklistController) GetPerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	person, err := ctrl.blacklistService.GetBlacklistedPerson(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklisted person")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklisted_person": person})
}

// DeletePerson soft-deletes a listing. The official deletion number is mandatory.
// DELETE /api/v1/blacklisted-persons/:id
func (ctrl *BlacklistController) DeletePerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeleteBlacklistedPersonRequest
	// an empty body still reaches the service, which rejects the missing value
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	person, err := ctrl.blacklistService.SoftDeleteBlacklistedPerson(id, req.OfficialDeletionNumber)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "blacklisted person")
		return
	}
	c.JSON(http.StatusOK, gin.H{"blacklisted_person": person})
}

// CreateNaturalDetail POST /api/v1/blacklisted-persons/:id/natural-details
func (ctrl *BlacklistController) CreateNaturalDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req NaturalDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	detail, matches, err := ctrl.blacklistService.CreateBlacklistNaturalDetail(id, *req.input())
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "natural detail")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"natural_detail": detail,
		"matches":        matches,
	})
}

// CreateJuridicalDetail POST /api/v1/blacklisted-persons/:id/juridical-details
func (ctrl *BlacklistController) CreateJuridicalDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req JuridicalDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	detail, err := ctrl.blacklistService.CreateBlacklistJuridicalDetail(id, *req.input())
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "juridical detail")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"juridical_detail": detail})
}

// SetAttribute PUT /api/v1/blacklisted-persons/:id/attributes/:name
func (ctrl *BlacklistController) SetAttribute(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	attr, err := ctrl.blacklistService.SetAttribute(id, c.Param("name"), req.Value)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "attribute")
		return
	}
	c.JSON(http.StatusOK, gin.H{"attribute": attr})
}

// ListMatches GET /api/v1/blacklisted-persons/:id/matches
func (ctrl *BlacklistController) ListMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	matches, err := ctrl.matchService.MatchesForBlacklistedPerson(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "match record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
