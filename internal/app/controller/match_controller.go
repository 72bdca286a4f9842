package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/screening-backend/internal/app/service"
	apperrors "github.com/ikkim/screening-backend/internal/errors"
	"github.com/ikkim/screening-backend/internal/middleware"
	"github.com/ikkim/screening-backend/internal/spreadsheet"
	ws "github.com/ikkim/screening-backend/internal/websocket"
	"github.com/ikkim/screening-backend/pkg/logger"
)

type MatchController struct {
	matchService  service.MatchService
	exportService service.LedgerExportService
	hub           *ws.Hub
	upgrader      websocket.Upgrader
}

// NewMatchController accepts websocket upgrades only from allowedOrigins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewMatchController(matchService service.MatchService, exportService service.LedgerExportService, hub *ws.Hub, allowedOrigins []string) *MatchController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &MatchController{
		matchService:  matchService,
		exportService: exportService,
		hub:           hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// ListMatches GET /api/v1/matches?person_id=&blacklisted_person_id=&kind=&since=&skip=&limit=
func (ctrl *MatchController) ListMatches(c *gin.Context) {
	skip, limit, ok := parsePage(c)
	if !ok {
		return
	}

	personID, err := queryUint(c, "person_id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "person_id must be numeric")
		return
	}
	blacklistedPersonID, err := queryUint(c, "blacklisted_person_id")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "blacklisted_person_id must be numeric")
		return
	}

	input := service.ListMatchesInput{
		PersonID:            personID,
		BlacklistedPersonID: blacklistedPersonID,
		Kind:                c.Query("kind"),
		Skip:                skip,
		Limit:               limit,
	}
	since, ok := parseSince(c)
	if !ok {
		return
	}
	input.Since = since

	records, total, err := ctrl.matchService.ListMatches(input)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "match record")
		return
	}

	c.JSON(http.StatusOK, Page{Items: records, Total: total, Skip: skip, Limit: effectiveLimit(limit)})
}

// GetMatch GET /api/v1/matches/:id
func (ctrl *MatchController) GetMatch(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := ctrl.matchService.GetMatch(id)
	if err != nil {
		apperrors.RespondWithDomainError(c, err, "match record")
		return
	}
	c.JSON(http.StatusOK, gin.H{"match": record})
}

// Stream upgrades to a websocket that receives an alert for every committed
// match record.
// GET /api/v1/matches/stream
func (ctrl *MatchController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, ws.NewConn(conn), userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// Export downloads the ledger as XLSX. Without since, the last 24 hours are exported.
// GET /api/v1/matches/export?since=
func (ctrl *MatchController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	since, ok := parseSince(c)
	if !ok {
		return
	}
	until := time.Now().UTC()
	from := until.Add(-24 * time.Hour)
	if since != nil {
		from = *since
	}
	if !from.Before(until) {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "since must be in the past")
		return
	}

	var buf bytes.Buffer
	n, err := ctrl.exportService.WriteLedger(&buf, from, until)
	if err != nil {
		log.Error("Failed to render ledger export", err)
		apperrors.RespondWithDomainError(c, err, "match record")
		return
	}

	log.Info("Ledger exported", logger.Fields{
		"records": n,
		"since":   from.Format(time.RFC3339),
	})
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="match-ledger-%s.xlsx"`, from.Format("20060102")))
	c.Data(http.StatusOK, spreadsheet.ContentTypeXLSX, buf.Bytes())
}

func parseSince(c *gin.Context) (*time.Time, bool) {
	raw := c.Query("since")
	if raw == "" {
		return nil, true
	}
	since, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "since must be an RFC3339 timestamp")
		return nil, false
	}
	since = since.UTC()
	return &since, true
}
