package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/screening-backend/config"
	"github.com/ikkim/screening-backend/internal/app/controller"
	"github.com/ikkim/screening-backend/internal/app/model"
	"github.com/ikkim/screening-backend/internal/app/repository"
	"github.com/ikkim/screening-backend/internal/app/service"
	"github.com/ikkim/screening-backend/internal/db"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/internal/screening"
	"github.com/ikkim/screening-backend/internal/spreadsheet"
	ws "github.com/ikkim/screening-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminPassword = "admin-password"

type apiFixture struct {
	engine *gin.Engine
	users  service.UserService
	token  string
}

func setupAPITest(t *testing.T) *apiFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server:    config.ServerConfig{GinMode: gin.TestMode},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		JWT:       config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiry: 15 * time.Minute, RefreshTokenExpiry: time.Hour},
		Screening: config.ScreeningConfig{DefaultMaxDistance: "3"},
		Admin:     config.AdminConfig{Username: "admin", Email: "admin@example.com", Password: adminPassword},
	}
	require.NoError(t, db.Seed(testDB, cfg))

	userRepo := repository.NewUserRepository(testDB)
	authzService := service.NewAuthorizationService(userRepo, nil)
	authService := service.NewAuthService(userRepo, nil, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	userService := service.NewUserService(userRepo, authzService)

	hub := ws.NewHub()
	screeningService := service.NewScreeningService(screening.NewEngine(nil), hub)
	personService := service.NewPersonService(testDB, screeningService)
	blacklistService := service.NewBlacklistService(testDB, screeningService)
	matchService := service.NewMatchService(testDB)
	configService := service.NewConfigService(repository.NewConfigRepository(testDB))

	r := NewRouter(
		controller.NewAuthController(authService, authzService),
		controller.NewUserController(userService),
		controller.NewPersonController(personService, matchService),
		controller.NewBlacklistController(blacklistService, matchService),
		controller.NewMatchController(matchService, service.NewLedgerExportService(matchService, nil, "ledger"), hub, cfg.CORS.AllowedOrigins),
		controller.NewConfigController(configService),
		middleware.NewAuthMiddleware(authService, authzService),
		func() error { return nil },
		cfg,
	)

	f := &apiFixture{engine: r.Setup(), users: userService}
	f.token = f.login(t, "admin", adminPassword)
	return f
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	w := f.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Tokens.AccessToken)
	return body.Tokens.AccessToken
}

func (f *apiFixture) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, into interface{}) {
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	var body apperrors.ErrorResponse
	decode(t, w, &body)
	return body.Error
}

type createdPerson struct {
	Person  model.Person        `json:"person"`
	Matches []model.MatchRecord `json:"matches"`
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestAPI_ScreeningFlow(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodPost, "/api/v1/blacklists", f.token, gin.H{"short_name": "OFAC"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var entry struct {
		Blacklist model.BlacklistEntry `json:"blacklist"`
	}
	decode(t, w, &entry)

	w = f.do(t, http.MethodPost, "/api/v1/blacklists/"+itoa(entry.Blacklist.ID)+"/persons", f.token, gin.H{
		"type":                         "natural",
		"official_registration_number": "SDN-100",
		"natural_detail": gin.H{
			"given_name":     "Juan",
			"first_surname":  "Perez",
			"second_surname": "Lopez",
		},
		"attributes": gin.H{"program": "SDGT"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/v1/persons", f.token, gin.H{
		"type": "natural",
		"natural_detail": gin.H{
			"given_name":     "juan",
			"first_surname":  "perez",
			"second_surname": "lopes",
			"date_of_birth":  "1980-01-31",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created createdPerson
	decode(t, w, &created)
	require.Len(t, created.Matches, 1)
	assert.Equal(t, screening.MatchFuzzy, created.Matches[0].Kind)
	assert.InDelta(t, 15.0/16.0, created.Matches[0].Score, 1e-9)
	assert.Equal(t, "JUAN PEREZ LOPES", created.Person.NaturalDetail.FullName)

	personPath := "/api/v1/persons/" + itoa(created.Person.ID)

	w = f.do(t, http.MethodGet, personPath+"/matches", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/matches?kind=fuzzy", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, service.DefaultPageLimit, page.Limit)

	w = f.do(t, http.MethodGet, "/api/v1/matches/"+itoa(created.Matches[0].ID), f.token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/matches/export", f.token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, spreadsheet.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())

	// a second natural detail on the same person is rejected
	w = f.do(t, http.MethodPost, personPath+"/natural-details", f.token, gin.H{"given_name": "Ana", "first_surname": "Ruiz"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperrors.DuplicateDetail, errorCode(t, w))

	w = f.do(t, http.MethodDelete, personPath, f.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.MissingJustification, errorCode(t, w))

	w = f.do(t, http.MethodDelete, personPath, f.token, gin.H{"deletion_reason": "duplicate"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodDelete, personPath, f.token, gin.H{"deletion_reason": "again"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAPI_ValidationErrors(t *testing.T) {
	f := setupAPITest(t)

	tests := []struct {
		name       string
		method     string
		path       string
		payload    interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "malformed national id",
			method:     http.MethodPost,
			path:       "/api/v1/persons",
			payload:    gin.H{"type": "natural", "natural_detail": gin.H{"given_name": "Ana", "first_surname": "Ruiz", "national_id": "SHORT"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.FormatViolation,
		},
		{
			name:       "juridical detail on natural person",
			method:     http.MethodPost,
			path:       "/api/v1/persons",
			payload:    gin.H{"type": "natural", "juridical_detail": gin.H{"legal_name": "ACME"}},
			wantStatus: http.StatusConflict,
			wantCode:   apperrors.KindMismatch,
		},
		{
			name:       "missing body fields",
			method:     http.MethodPost,
			path:       "/api/v1/persons",
			payload:    gin.H{},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidInput,
		},
		{
			name:       "non numeric id",
			method:     http.MethodGet,
			path:       "/api/v1/persons/abc",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.ValidationInvalidID,
		},
		{
			name:       "unknown person",
			method:     http.MethodGet,
			path:       "/api/v1/persons/999",
			wantStatus: http.StatusNotFound,
			wantCode:   apperrors.ResourceNotFound,
		},
		{
			name:       "negative threshold",
			method:     http.MethodPut,
			path:       "/api/v1/config/" + model.ConfigMaxStringDistance,
			payload:    gin.H{"value": "-2"},
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.FormatViolation,
		},
		{
			name:       "page limit too large",
			method:     http.MethodGet,
			path:       "/api/v1/matches?limit=1000",
			wantStatus: http.StatusBadRequest,
			wantCode:   apperrors.FormatViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, f.token, tt.payload)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestAPI_PermissionsAreEnforced(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodPost, "/api/v1/roles", f.token, gin.H{
		"name":        "viewer",
		"permissions": []string{"view_person"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var role struct {
		Role model.Role `json:"role"`
	}
	decode(t, w, &role)

	w = f.do(t, http.MethodPost, "/api/v1/users", f.token, gin.H{"username": "viewer", "email": "viewer@example.com", "password": "viewer-password"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		User model.User `json:"user"`
	}
	decode(t, w, &user)

	w = f.do(t, http.MethodPost, "/api/v1/users/"+itoa(user.User.ID)+"/roles", f.token, gin.H{"role_id": role.Role.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	viewer := f.login(t, "viewer", "viewer-password")

	w = f.do(t, http.MethodGet, "/api/v1/persons", viewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/api/v1/persons", viewer, gin.H{"type": "juridical"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPut, "/api/v1/config/"+model.ConfigMaxStringDistance, viewer, gin.H{"value": "5"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/auth/me", viewer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Permissions []string `json:"permissions"`
	}
	decode(t, w, &me)
	assert.Equal(t, []string{"view_person"}, me.Permissions)

	w = f.do(t, http.MethodGet, "/api/v1/persons", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_CORSPreflight(t *testing.T) {
	f := setupAPITest(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/persons", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
