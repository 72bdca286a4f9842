package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/pkg/logger"
)

// NaturalDetailRequest carries a natural identity. Dates use YYYY-MM-DD.
type NaturalDetailRequest struct {
	NationalID    *string `json:"national_id"`
	TaxID         *string `json:"tax_id"`
	GivenName     string  `json:"given_name" binding:"required"`
	FirstSurname  string  `json:"first_surname" binding:"required"`
	SecondSurname *string `json:"second_surname"`
	DateOfBirth   string  `json:"date_of_birth"`
}

func (r *NaturalDetailRequest) input() *service.NaturalDetailInput {
	if r == nil {
		return nil
	}
	return &service.NaturalDetailInput{
		NationalID:    r.NationalID,
		TaxID:         r.TaxID,
		GivenName:     r.GivenName,
		FirstSurname:  r.FirstSurname,
		SecondSurname: r.SecondSurname,
		DateOfBirth:   r.DateOfBirth,
	}
}

type JuridicalDetailRequest struct {
	TaxID             *string `json:"tax_id"`
	LegalName         string  `json:"legal_name" binding:"required"`
	IncorporationDate string  `json:"incorporation_date"`
}

func (r *JuridicalDetailRequest) input() *service.JuridicalDetailInput {
	if r == nil {
		return nil
	}
	return &service.JuridicalDetailInput{
		TaxID:             r.TaxID,
		LegalName:         r.LegalName,
		IncorporationDate: r.IncorporationDate,
	}
}

// parseIDParam reads a numeric path parameter and writes a 400 when it is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID format", logger.Fields{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parsePage reads skip and limit. Missing values become zero and are bounded
// by the service.
func parsePage(c *gin.Context) (int, int, bool) {
	skip, err := queryInt(c, "skip")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "skip must be an integer")
		return 0, 0, false
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "limit must be an integer")
		return 0, 0, false
	}
	return skip, limit, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func queryUint(c *gin.Context, key string) (*uint, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, err
	}
	id := uint(n)
	return &id, nil
}

// Page is the envelope of every list response.
type Page struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Skip  int         `json:"skip"`
	Limit int         `json:"limit"`
}
