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

type PersonController struct {
	personService service.PersonService
	matchService  service.MatchService
}

func NewPersonController(personService service.PersonService, matchService service.MatchService) *PersonController {
	return &PersonController{
		personService: personService,
		matchService:  matchService,
	}
}

type CreatePersonRequest struct {
	Type      model.PersonKind        `json:"type" binding:"required"`
	Active    *bool                   `json:"active"`
	Natural   *NaturalDetailRequest   `json:"natural_detail"`
	Juridical *JuridicalDetailRequest `json:"juridical_detail"`
}

type DeletePersonRequest struct {
	DeletionReason string `json:"deletion_reason"`
}

// CreatePerson registers a person and, when a natural detail is supplied,
// screens it against the blacklist in the same transaction.
// POST /api/v1/persons
func (ctrl *PersonController) CreatePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create person request", logger.Fields{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	person, matches, err := ctrl.personService.CreatePerson(service.CreatePersonInput{
		Kind:      req.Type,
		Active:    req.Active,
		Natural:   req.Natural.input(),
		Juridical: req.Juridical.input(),
	})
	if err != nil {
		log.Warn("Failed to create person", logger.Fields{
			"error": err.Error(),
		})
		apperrors.RespondWithDomainError(c, err, "person")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"person":  person,
		"matches": matches,
	})
}

// ListPersons GET /api/v1/persons?type=&active=&name=&skip=&limit=
func (ctrl *PersonController) ListPersons(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}
	active, err := queryBool(c, "active")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "active must be a boolean")
		return
	}

	input := service.ListPersonsInput{
		Active: active,
		Name:   c.Query("name"),
		Skip:   skip,
		Limit:  limit,
	}
	if raw := c.Query("type"); raw != "" {
		kind := model.PersonKind(raw)
		input.Kind = &kind
	}

	persons, total, err := ctrl.personService.ListPersons(input)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "person")
		return
	}

	c.JSON(http.StatusOK, Page{Items: persons, Total: total, Skip: skip, Limit: effectiveLimit(limit)})
}

// GetPerson GET /api/v1/persons/:id
func (ctrl *PersonController) GetPerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	person, err := ctrl.personService.GetPerson(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "person")
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person})
}

// DeletePerson soft-deletes a person. The reason is mandatory.
// DELETE /api/v1/persons/:id
func (ctrl *PersonController) DeletePerson(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req DeletePersonRequest
	// an empty body still reaches the service, which rejects the missing value
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	person, err := ctrl.personService.SoftDeletePerson(id, req.DeletionReason)
	if err != nil {
		log.Warn("Failed to delete person", logger.Fields{
			"person_id": id,
			"error":     err.Error(),
		})
		apperrors.RespondWithDomainError(c, err, "person")
		return
	}

	c.JSON(http.StatusOK, gin.H{"person": person})
}

// CreateNaturalDetail POST /api/v1/persons/:id/natural-details
func (ctrl *PersonController) CreateNaturalDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req NaturalDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	detail, matches, err := ctrl.personService.CreateNaturalDetail(id, *req.input())
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "natural detail")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"natural_detail": detail,
		"matches":        matches,
	})
}

// CreateJuridicalDetail POST /api/v1/persons/:id/juridical-details
func (ctrl *PersonController) CreateJuridicalDetail(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req JuridicalDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	detail, err := ctrl.personService.CreateJuridicalDetail(id, *req.input())
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "juridical detail")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"juridical_detail": detail})
}

// ListMatches GET /api/v1/persons/:id/matches
func (ctrl *PersonController) ListMatches(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	matches, err := ctrl.matchService.MatchesForPerson(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "match record")
		return
	}

	c.JSON(http.StatusOK, gin.H{"matches": matches})
}

func effectiveLimit(limit int) int {
	if limit == 0 {
		return service.DefaultPageLimit
	}
	return limit
}
