package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"euchre-service/internal/euchre"
	"euchre-service/internal/service/game"
	"euchre-service/internal/service/player"
	"euchre-service/internal/service/table"
	pkgAuth "euchre-service/pkg/auth"
	appErr "euchre-service/pkg/errors"
	"euchre-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit    = 1 << 16
	readTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
	writeTimeout = 5 * time.Second
)

type Handler struct {
	playerSvc *player.Service
	tableSvc  *table.Service
	gameSvc   *game.Service
}

func NewHandler(playerSvc *player.Service, tableSvc *table.Service, gameSvc *game.Service) *Handler {
	return &Handler{playerSvc: playerSvc, tableSvc: tableSvc, gameSvc: gameSvc}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleTableWS attaches a seated player's connection to the table runtime.
// A second connection for the same player replaces the first.
func (h *Handler) HandleTableWS(c *gin.Context) {
	tableID, err := strconv.ParseInt(c.Param("tableId"), 10, 64)
	if err != nil || tableID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table id"})
		return
	}

	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParsePlayerToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	playerID := claims.PlayerID

	ctx := c.Request.Context()
	if _, err := h.tableSvc.ValidateTableAccess(ctx, playerID, tableID); err != nil {
		switch {
		case errors.Is(err, appErr.ErrUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, appErr.ErrTableNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
		case errors.Is(err, appErr.ErrTableAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "not seated at this table"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate table access"})
		}
		return
	}

	rt, err := h.gameSvc.GetRuntime(ctx, tableID)
	if err != nil {
		if errors.Is(err, appErr.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "table not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load table"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	connRef := uuid.NewString()
	outbound, role, err := rt.Connect(euchre.PlayerID(playerID), connRef)
	if err != nil {
		logger.Log.Warn("ws connect rejected", zap.String("playerID", playerID), zap.Int64("tableID", tableID), zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "not seated"),
			time.Now().Add(writeTimeout))
		conn.Close()
		return
	}

	logger.Log.Info("New WebSocket connection",
		zap.Int64("tableID", tableID),
		zap.String("playerID", playerID),
		zap.String("seat", string(role)),
	)

	cl := newClient(conn, h, rt, playerID, role, connRef, outbound)
	cl.run()
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

type client struct {
	conn     *websocket.Conn
	h        *Handler
	rt       *game.TableRuntime
	playerID string
	role     euchre.Role
	connRef  string
	outbound <-chan game.OutgoingMessage
	done     chan struct{}
}

func newClient(conn *websocket.Conn, h *Handler, rt *game.TableRuntime, playerID string, role euchre.Role, connRef string, outbound <-chan game.OutgoingMessage) *client {
	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})
	return &client{
		conn:     conn,
		h:        h,
		rt:       rt,
		playerID: playerID,
		role:     role,
		connRef:  connRef,
		outbound: outbound,
		done:     make(chan struct{}),
	}
}

func (c *client) run() {
	go c.writePump()
	go c.presenceLoop()
	c.readPump()
}

func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.rt.Disconnect(c.connRef)
		c.conn.Close()
	}()

	for {
		mt, message, err := c.conn.ReadMessage()
		if err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("playerID", c.playerID), zap.Int64("tableID", c.rt.TableID()))
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		var incoming struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(message, &incoming); err != nil {
			c.rt.SendError(c.connRef, errors.New("invalid payload"))
			continue
		}
		if incoming.Type == "" {
			continue
		}

		if err := c.rt.HandleAction(euchre.PlayerID(c.playerID), c.connRef, incoming.Type, incoming.Data); err != nil {
			c.rt.SendError(c.connRef, err)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.outbound:
			if !ok {
				// Replaced by a newer connection or the runtime shut down.
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced"),
					time.Now().Add(writeTimeout))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("playerID", c.playerID), zap.Int64("tableID", c.rt.TableID()))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeTimeout)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// presenceLoop keeps the seat's presence key alive while the socket is open.
func (c *client) presenceLoop() {
	tableID := c.rt.TableID()
	touch := func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		c.h.tableSvc.TouchPresence(ctx, tableID, c.role, c.connRef)
		c.h.playerSvc.Touch(ctx, c.playerID)
	}
	touch()

	ticker := time.NewTicker(c.h.tableSvc.PresenceInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			touch()
		case <-c.done:
			ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			c.h.tableSvc.ReleasePresence(ctx, tableID, c.role, c.connRef)
			cancel()
			return
		}
	}
}
