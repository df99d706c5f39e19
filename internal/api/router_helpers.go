package api

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigboard/gigadmin/internal/middleware"
	"github.com/gigboard/gigadmin/internal/models"
	"github.com/gigboard/gigadmin/internal/ws"
)

// getAdminID returns the authenticated admin id set by middleware.Authenticate.
// It writes a 401 and returns 0 when the id is missing.
func getAdminID(c *gin.Context) int64 {
	id := c.GetInt64(middleware.AdminIDKey)
	if id <= 0 {
		respondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, "unauthorized")

		return 0
	}

	return id
}

// parseID reads the :id path parameter. It writes a 400 and returns 0 when the
// parameter is not a positive integer.
func parseID(c *gin.Context) int64 {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "id must be a positive integer")

		return 0
	}

	return id
}

// adminAndID combines getAdminID and parseID, stopping at the first failure.
func adminAndID(c *gin.Context) (adminID, id int64, ok bool) {
	if adminID = getAdminID(c); adminID == 0 {
		return 0, 0, false
	}

	if id = parseID(c); id == 0 {
		return 0, 0, false
	}

	return adminID, id, true
}

// bindJSON decodes the request body into dst, writing a 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body")

		return false
	}

	return true
}

// queryList collects a repeated query parameter. Both sortBy=a&sortBy=b and
// sortBy=a,b are accepted, as are the bracketed sortBy[] forms.
func queryList(c *gin.Context, key string) []string {
	raw := c.QueryArray(key)
	raw = append(raw, c.QueryArray(key+"[]")...)

	var out []string

	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}

// queryParser accumulates query parsing errors so a handler can check once.
type queryParser struct {
	c   *gin.Context
	err error
}

func (p *queryParser) fail(key, msg string) {
	if p.err == nil {
		p.err = models.NewValidationError(key, msg)
	}
}

func (p *queryParser) listQuery() models.ListQuery {
	q := models.ListQuery{
		Page:      p.boundedInt("page", models.MaxPage),
		Limit:     p.positiveInt("limit"),
		SortBy:    queryList(p.c, "sortBy"),
		SortOrder: queryList(p.c, "sortOrder"),
	}

	for _, dir := range q.SortOrder {
		if !strings.EqualFold(dir, string(models.SortAsc)) && !strings.EqualFold(dir, string(models.SortDesc)) {
			p.fail("sortOrder", "must be asc or desc")
		}
	}

	return q
}

// boundedInt is positiveInt with an upper limit.
func (p *queryParser) boundedInt(key string, limit int) int {
	v := p.positiveInt(key)
	if v > limit {
		p.fail(key, fmt.Sprintf("must not exceed %d", limit))

		return 0
	}

	return v
}

func (p *queryParser) positiveInt(key string) int {
	raw := p.c.Query(key)
	if raw == "" {
		return 0
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		p.fail(key, "must be a positive integer")

		return 0
	}

	return v
}

func (p *queryParser) id(key string) *int64 {
	raw := p.c.Query(key)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		p.fail(key, "must be a positive integer")

		return nil
	}

	return &v
}

func (p *queryParser) float(key string) *float64 {
	raw := p.c.Query(key)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.fail(key, "must be a number")

		return nil
	}

	return &v
}

func (p *queryParser) boolean(key string) *bool {
	raw := p.c.Query(key)
	if raw == "" {
		return nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.fail(key, "must be true or false")

		return nil
	}

	return &v
}

func (p *queryParser) timestamp(key string) *time.Time {
	raw := p.c.Query(key)
	if raw == "" {
		return nil
	}

	v, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		p.fail(key, "must be an RFC3339 timestamp")

		return nil
	}

	return &v
}

// ok writes a 400 for the first parse error, if any, and reports whether parsing succeeded.
func (p *queryParser) ok() bool {
	if p.err != nil {
		respondError(p.c, http.StatusBadRequest, ErrCodeValidationError, p.err.Error())

		return false
	}

	return true
}

// logAudit writes the per-mutation "audit" info line.
func logAudit(log *logrus.Logger, action models.Action, adminID, entityID int64) {
	log.WithFields(logrus.Fields{
		"action":    action,
		"admin_id":  adminID,
		"entity_id": entityID,
	}).Info("audit")
}

// wsHandler upgrades an authenticated admin to the live action feed.
// Browsers cannot set headers on a WebSocket handshake, so the access token is
// also accepted from the token query parameter; the route is registered
// behind streamAuth, which handles both.
func wsHandler(appCtx context.Context, log *logrus.Logger, hub *ws.Hub, corsOrigins []string, validator ws.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID := getAdminID(c)
		if adminID == 0 {
			return
		}

		token := c.GetString(streamTokenKey)

		// CORS origins double as WebSocket origin patterns.
		conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
			OriginPatterns:       corsOrigins,
			CompressionMode:      websocket.CompressionContextTakeover,
			CompressionThreshold: 128,
		})
		if err != nil {
			log.WithError(err).Error("websocket accept failed")

			return
		}

		client := ws.NewClient(hub, conn, validator, adminID, token)
		hub.Register(client)

		// Derive a context that cancels when either the server shuts down or the request ends.
		wsCtx, wsCancel := context.WithCancel(appCtx)
		go func() {
			select {
			case <-c.Request.Context().Done():
				wsCancel()
			case <-wsCtx.Done():
			}
		}()

		go client.WritePump(wsCtx)
		client.ReadPump(wsCtx)
		wsCancel()
	}
}

// streamTokenKey holds the raw access token of a feed connection for periodic re-validation.
const streamTokenKey = "stream_token"

// streamAuth moves a ?token= query parameter into the Authorization header
// when none is present, then remembers the token for the feed client.
func streamAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.ExtractBearerToken(c) == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}

		c.Set(streamTokenKey, middleware.ExtractBearerToken(c))
		c.Next()
	}
}

func ginLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		}
		if rid, exists := c.Get(middleware.RequestIDKey); exists {
			fields["request_id"] = rid
		}
		if id := c.GetInt64(middleware.AdminIDKey); id > 0 {
			fields["admin_id"] = id
		}
		log.WithFields(fields).Info("request")
	}
}
